// Copyright © 2023 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package main

import "github.com/js-arias/command"

func init() {
	app.Add(classificationFilesGuide)
	app.Add(projectsGuide)
	app.Add(settingsFileGuide)
	app.Add(traitFilesGuide)
	app.Add(treeFilesGuide)
}

var projectsGuide = &command.Command{
	Usage: "projects",
	Short: "about project files",
	Long: `
BEASTgen requires several files to build an analysis. To reduce the burden of
keeping track of many files, a single project file is used to hold the
reference of all files required in the analysis. This guide explains the
structure of the file, but most of the time, the best and most secure way to
edit or view this file is by using beastgen commands.

A project file is a tab-delimited file with the following fields:

	- dataset  for the kind of file
	- path     for the path of the file

Here is an example file:

	# beastgen project files
	dataset	path
	settings	indo-european.yaml
	mcmc	mcmc.tab
	glottolog	tree_glottolog_newick.txt
	trees	trees.tab

The valid file types are:

- Analysis settings. Defined by the dataset keyword "settings". This file
  contains the definition of the languages, calibrations, clocks, and
  substitution models of the analysis, in the form of a YAML file. See
  'beastgen help settings-file'.
- MCMC parameters. Defined by the dataset keyword "mcmc". This file contains
  the length of the chain, and the options of the loggers, in the form of a
  tab-delimited file. If not defined, default values will be used.
- Classification. Defined by the dataset keyword "classification". This file
  contains the classification of the languages in the form of a tab-delimited
  file. See 'beastgen help classification-files'.
- Glottolog trees. Defined by the dataset keyword "glottolog". This file
  contains one or more Glottolog trees in newick format. If both a
  classification file and a Glottolog file are defined, the classification file
  replaces the classification of the languages defined in both files.
- Language list. Defined by the dataset keyword "langs". A list of languages
  to be included in the analysis, one per line.
- Family list. Defined by the dataset keyword "families". A list of families
  (clades of the classification) to be included in the analysis, one per line.
- Starting trees. Defined by the dataset keyword "trees". This file contains
  one or more time-calibrated trees in the form of a tab-delimited file. The
  recommended way to add a tree file is by using the command
  'beastgen tree add'. See 'beastgen help tree-files'.

Files can be added to a project using the command 'beastgen add'.
	`,
}

var classificationFilesGuide = &command.Command{
	Usage: "classification-files",
	Short: "about classification files",
	Long: `
The classification of the languages is used to filter languages by family, to
resolve the clades of the calibrations, and to build the monophyly constraints
of the analysis.

A classification can be read from Glottolog trees in newick format, in which
each node is labelled as 'Name [glottocode]', or 'Name [glottocode][iso]'. Each
language will be classified by its glottocode, and by its ISO code, if
defined.

A classification can also be defined as a tab-delimited file with the
following columns:

	- taxon  the identifier of the language
	- depth  the depth of the ancestor (0 is the most general)
	- name   the name of the ancestor
	- code   the identifier of the ancestor

A language without ancestors (e.g., a language isolate) is defined by a row
with an empty depth.

Here is an example file:

	taxon	depth	name	code
	stan1293	0	Indo-European	indo1319
	stan1293	1	Classical Indo-European	clas1257
	stan1293	2	Germanic	germ1287
	basq1248

Language identifiers are case insensitive.
	`,
}

var settingsFileGuide = &command.Command{
	Usage: "settings-file",
	Short: "about the settings file",
	Long: `
The settings of an analysis are defined in a YAML file with the following
sections:

languages
	The languages and the tree of the analysis:
	- languages: a list of languages to be included.
	- families: a list of clades to be included.
	- exclusions: a list of languages to be excluded.
	- overlap: how the languages of different data files are combined,
	  either "union" (the default), or "intersection".
	- monophyly: if true, the tree will be constrained to be consistent
	  with the classification.
	- monophyly_start_depth, monophyly_end_depth, monophyly_levels, and
	  monophyly_direction ("top_down" or "bottom_up"): the depths of the
	  classification used by the monophyly constraint.
	- sample_topology and sample_branch_lengths: if false, the tree
	  topology, or the branch lengths, are fixed.
	- tree_prior: "yule" (the default), "birthdeath", "coalescent", or
	  "uniform".
	- starting_tree: the name of the starting tree, if the project
	  includes more than one tree.

calibrations
	A map of clades to age ranges in years, for example
	"Germanic: 1500-2000". The special clade "root" calibrates the root of
	the tree. A range can be defined as a normal distribution,
	"normal(1500-2000)", which is the default, or as a uniform
	distribution, "uniform(1500-2000)".

clocks
	A list of clocks, each one with a name, and a type, either "strict",
	"relaxed", or "random". A relaxed clock can define a distribution
	("lognormal", "exponential", or "gamma"), and the number of rate
	categories. The rate of a clock is estimated only if there are
	calibrations.

models
	A list of substitution models, each one with a name, a model ("mk",
	"covarion", or "bsvs"), and the path of a data file (relative to the
	settings file). A model uses the clock defined in the clock field,
	or a clock with the same name as the model, or the default strict
	clock. Options: rate_variation, remove_constant_features,
	minimum_data (as a percentage), and binarised.

Here is an example file:

	languages:
	  families: [Germanic]
	  monophyly: true
	calibrations:
	  Germanic: 1500-2000
	models:
	  - name: lexicon
	    model: covarion
	    data: cognates.csv
	`,
}

var traitFilesGuide = &command.Command{
	Usage: "trait-files",
	Short: "about trait data files",
	Long: `
Each substitution model of the analysis is associated with a data file with
the features (for example, cognate classes, or typological features) observed
in a set of languages.

Files with the extension '.csv' are read as comma-separated files, with a
'Language_ID' column, and one column for each feature. Here is an example file:

	Language_ID,hand,water
	stan1293,1,2
	dutc1256,1,?

Any other file is read as a tab-delimited file with the following columns:

	- taxon    the identifier of the language
	- feature  the name of the feature
	- value    the observed value

Here is an example file:

	taxon	feature	value
	stan1293	hand	1
	stan1293	water	2
	dutc1256	hand	1

In both formats, the value "?" is used for missing observations.
	`,
}

var treeFilesGuide = &command.Command{
	Usage: "tree-files",
	Short: "about tree files",
	Long: `
In BEASTgen, starting trees must be time-calibrated and stored in a
tab-delimited file. The recommended way to interact with starting trees in a
BEASTgen project is by using the commands in "beastgen tree".

A tree file is a tab-delimited file with the following columns:

	-tree    for the name of the tree.
	-node    for the ID of the node.
	-parent  for of ID of the parent node (-1 is used for the root).
	-age     the age of the node (in years).
	-taxon   the name of the language.

Here is an example file:

	# time calibrated phylogenetic tree
	tree	node	parent	age	taxon
	germanic	0	-1	2000
	germanic	1	0	0	stan1295
	germanic	2	0	1000
	germanic	3	2	0	dutc1256
	germanic	4	2	0	stan1293

The languages of the analysis must be terminals of the starting tree. Any
other terminal will be pruned. In a BEASTgen project, the file that contains
the trees is indicated with the "trees" keyword.
	`,
}
