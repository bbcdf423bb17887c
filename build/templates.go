package build

import (
	"bytes"
	"fmt"
	"text/template"

	sprig "github.com/go-task/slim-sprig/v3"

	"stylec/config"
)

// Values is a struct that holds variables we make available for template expansion
type Values struct {
	Context string
	// Name of the style sheet, taken from the snapshot or its file name
	Name   string
	Source string
	Dir    string
	Mode   string
	Index  int
	// Hash is a short digest of input and compile options
	Hash string
}

func expandTemplate(name config.TemplateFieldName, field string, values Values) (string, error) {
	funcMap := sprig.FuncMap()

	tmpl, err := template.New(string(name)).Funcs(funcMap).Parse(field)
	if err != nil {
		return "", fmt.Errorf("unable to parse template field %s: %w", name, err)
	}

	values.Context = string(name)

	buf := new(bytes.Buffer)
	if err := tmpl.Execute(buf, values); err != nil {
		return "", err
	}
	return buf.String(), nil
}
