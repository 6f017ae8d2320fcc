package codegen

import (
	"bytes"
	"embed"
	"fmt"
	"os"
	"sort"
	"text/template"

	"golang.org/x/tools/imports"
)

// DefaultSuffix is appended to the type name to form the wrapper name
const DefaultSuffix = "Proxy"

//go:embed templates/*.go.tmpl
var templateFS embed.FS

// Generator renders wrapper source for type models
type Generator interface {
	Render(models []*TypeModel) ([]byte, error)
	Generate(filename string, models []*TypeModel) error
}

// Formatter formats generated Go code and organizes imports
type Formatter interface {
	Format(filename string, src []byte) ([]byte, error)
}

// FileWriter writes generated code to disk
type FileWriter interface {
	Write(filename string, data []byte) error
}

type generatorImpl struct {
	formatter Formatter
	writer    FileWriter
	suffix    string
	tmpl      *template.Template
}

type goimportsFormatter struct{}

type fileWriter struct{}

type templateData struct {
	Package string
	Imports []string
	Types   []typeTemplateData
}

type typeTemplateData struct {
	WrapperName string
	Model       *TypeModel
}

// NewGenerator creates a generator. An empty suffix uses DefaultSuffix.
func NewGenerator(f Formatter, w FileWriter, suffix string) Generator {
	if suffix == "" {
		suffix = DefaultSuffix
	}
	tmpl := template.Must(template.New("").ParseFS(templateFS, "templates/*.go.tmpl"))
	return &generatorImpl{formatter: f, writer: w, suffix: suffix, tmpl: tmpl}
}

// NewGoimportsFormatter creates a formatter backed by goimports
func NewGoimportsFormatter() Formatter {
	return &goimportsFormatter{}
}

// NewFileWriter creates a plain file writer
func NewFileWriter() FileWriter {
	return &fileWriter{}
}

func (g *generatorImpl) Render(models []*TypeModel) ([]byte, error) {
	if len(models) == 0 {
		return nil, fmt.Errorf("no types to generate")
	}

	data, err := g.buildTemplateData(models)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := g.tmpl.ExecuteTemplate(&buf, "proxy.go.tmpl", data); err != nil {
		return nil, fmt.Errorf("template: %w", err)
	}

	formatted, err := g.formatter.Format(g.suffix+".go", buf.Bytes())
	if err != nil {
		return nil, fmt.Errorf("format: %w", err)
	}
	return formatted, nil
}

func (g *generatorImpl) Generate(filename string, models []*TypeModel) error {
	src, err := g.Render(models)
	if err != nil {
		return err
	}
	if err := g.writer.Write(filename, src); err != nil {
		return fmt.Errorf("write: %w", err)
	}
	return nil
}

func (g *generatorImpl) buildTemplateData(models []*TypeModel) (templateData, error) {
	pkgPath := models[0].PkgPath
	importsSet := map[string]struct{}{}
	data := templateData{Package: models[0].PkgName}

	for _, m := range models {
		if m.PkgPath != pkgPath {
			return templateData{}, fmt.Errorf("types %s and %s are in different packages", models[0].Name, m.Name)
		}
		for _, path := range m.Imports {
			importsSet[path] = struct{}{}
		}
		data.Types = append(data.Types, typeTemplateData{
			WrapperName: m.Name + g.suffix,
			Model:       m,
		})
	}

	for path := range importsSet {
		data.Imports = append(data.Imports, path)
	}
	sort.Strings(data.Imports)
	return data, nil
}

func (f *goimportsFormatter) Format(filename string, src []byte) ([]byte, error) {
	return imports.Process(filename, src, nil)
}

func (w *fileWriter) Write(filename string, data []byte) error {
	return os.WriteFile(filename, data, 0o644)
}
