/*
Package modeller runs comparative modelling jobs with MODELLER.

MODELLER is driven through its Python interface. For each job a small driver
script is rendered from the Config and the Job: it loads the environment,
points it at the atom file directories, registers the PIR alignment, the
template codes (knowns) and the target code, sets the model index range and
output format, optionally superposes the templates, builds the models and
finally writes the per-model results ('name', 'failure', 'DOPE score' and
'GA341 score') to a JSON file that Run reads back.

Models are written into Config.OutputDir, which must already exist.

A typical use:

	conf := modeller.DefaultConfig
	conf.AtomDirs = []string{"atom_files"}
	conf.OutputDir = "models"
	results, err := conf.Run(ctx, modeller.Job{
		Alignment: "pir_files/alignment_IgA1.pir",
		Knowns:    []string{"1n8z", "3m8o"},
		Sequence:  "target_IgA1",
	})
	best, err := results.Best()
*/
package modeller
