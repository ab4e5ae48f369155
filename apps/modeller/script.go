package modeller

import (
	"bytes"
	"strconv"
	"strings"
	"text/template"
)

// assessMethods maps the assessment names accepted in a Config to the
// MODELLER objects.
var assessMethods = map[string]string{
	"DOPE":   "assess.DOPE",
	"DOPEHR": "assess.DOPEHR",
	"GA341":  "assess.GA341",
}

// scriptData is everything the driver template needs.
type scriptData struct {
	Config
	Job
	Outputs string
}

var driver = template.Must(template.New("driver").Funcs(template.FuncMap{
	"py":     pyString,
	"tuple":  pyTuple,
	"list":   pyList,
	"bool":   pyBool,
	"assess": pyAssess,
	"float":  pyFloat,
}).Parse(`# Generated by abmodel. Edits are overwritten.
import json

from modeller import *
from modeller.automodel import *

log.{{if .Vomit}}verbose{{else}}minimal{{end}}()
env = Environ()
env.io.atom_files_directory = {{list .AtomDirs}}
{{- $model := "AutoModel"}}
{{- if not .Restraints.Empty}}
{{- $model = "RestrainedModel"}}


class RestrainedModel(AutoModel):
    def special_restraints(self, aln):
        rsr = self.restraints
        at = self.atoms
{{- range .Restraints.Alpha}}
        rsr.add(secondary_structure.Alpha(self.residue_range({{py .From}}, {{py .To}})))
{{- end}}
{{- range .Restraints.Strands}}
        rsr.add(secondary_structure.Strand(self.residue_range({{py .From}}, {{py .To}})))
{{- end}}
{{- range .Restraints.Sheets}}
        rsr.add(secondary_structure.Sheet(at[{{py .N}}], at[{{py .O}}], sheet_h_bonds={{.HBonds}}))
{{- end}}
{{- range .Restraints.Distances}}
        rsr.add(forms.Gaussian(group=physical.xy_distance,
                               feature=features.Distance(at[{{py .A}}], at[{{py .B}}]),
                               mean={{float .Mean}}, stdev={{float .Stdev}}))
{{- end}}

    def special_patches(self, aln):
{{- range .Restraints.Disulfides}}
        self.patch(residue_type='DISU', residues=(self.residues[{{py .A}}], self.residues[{{py .B}}]))
{{- end}}
        pass
{{- end}}


a = {{$model}}(
    env,
    alnfile={{py .Alignment}},
    knowns={{tuple .Knowns}},
    sequence={{py .Sequence}},
    assess_methods={{assess .Assess}})
a.starting_model = {{.StartingModel}}
a.ending_model = {{.EndingModel}}
a.set_output_model_format({{py .OutputFormat}})
{{- if .Name}}
a.name = {{py .Name}}
{{- end}}
a.initial_malign3d = {{bool .InitialMalign3D}}
a.make()


def first(score):
    if isinstance(score, (list, tuple)):
        return score[0] if score else None
    return score


outputs = []
for o in a.outputs:
    failure = o.get('failure')
    outputs.append({
        'name': o.get('name'),
        'failure': None if failure is None else str(failure),
        'dope': o.get('DOPE score'),
        'dopehr': o.get('DOPE-HR score'),
        'ga341': first(o.get('GA341 score')),
    })
OUTPUTS = {{py .Outputs}}
with open(OUTPUTS, 'w') as f:
    json.dump(outputs, f)
`))

// script renders the driver for a job. All paths in conf and job must
// already be absolute.
func (conf Config) script(job Job, outputs string) ([]byte, error) {
	buf := new(bytes.Buffer)
	err := driver.Execute(buf, scriptData{Config: conf, Job: job, Outputs: outputs})
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func pyString(s string) string {
	return strconv.Quote(s)
}

func pyList(ss []string) string {
	quoted := make([]string, len(ss))
	for i, s := range ss {
		quoted[i] = pyString(s)
	}
	return "[" + strings.Join(quoted, ", ") + "]"
}

// pyTuple always has a trailing comma so that a single element is still a
// tuple.
func pyTuple(ss []string) string {
	quoted := make([]string, len(ss))
	for i, s := range ss {
		quoted[i] = pyString(s) + ","
	}
	return "(" + strings.Join(quoted, " ") + ")"
}

func pyBool(b bool) string {
	if b {
		return "True"
	}
	return "False"
}

func pyFloat(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}

func pyAssess(names []string) string {
	methods := make([]string, len(names))
	for i, name := range names {
		methods[i] = assessMethods[strings.ToUpper(name)] + ","
	}
	return "(" + strings.Join(methods, " ") + ")"
}
