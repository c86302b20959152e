package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/AlecAivazis/survey/v2"
	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"

	"github.com/goliatone/go-asn1gen/pkg/asn1"
	"github.com/goliatone/go-asn1gen/pkg/asn1/yamlschema"
	"github.com/goliatone/go-asn1gen/pkg/uper"
)

func main() {
	schemaPath := flag.String("schema", "schema.yaml", "checked schema document to generate from")
	namespace := flag.String("namespace", "asn1", "C symbol namespace prefix")
	headerPath := flag.String("header", "", "header output file (stdout if empty)")
	sourcePath := flag.String("source", "", "source output file (stdout if empty)")
	interactive := flag.Bool("interactive", false, "pick the types to generate interactively")
	watch := flag.Bool("watch", false, "regenerate whenever the schema file changes")
	flag.Parse()

	logger := zerolog.New(os.Stderr).With().Timestamp().Logger()

	gen, err := uper.New(*namespace)
	if err != nil {
		logger.Fatal().Err(err).Msg("create generator")
	}

	run := func() error {
		modules, err := yamlschema.LoadFile(*schemaPath)
		if err != nil {
			return err
		}

		if *interactive {
			modules, err = selectTypes(modules)
			if err != nil {
				return err
			}
		}

		out, err := gen.Generate(modules)
		if err != nil {
			return err
		}

		header := assembleHeader(*namespace, filepath.Base(*headerPath), out)
		source := assembleSource(filepath.Base(*headerPath), out)

		if err := writeOutput(*headerPath, header); err != nil {
			return err
		}
		if err := writeOutput(*sourcePath, source); err != nil {
			return err
		}

		logger.Info().
			Str("schema", *schemaPath).
			Str("header", *headerPath).
			Str("source", *sourcePath).
			Msg("generated")
		return nil
	}

	if err := run(); err != nil {
		logger.Fatal().Err(err).Msg("generate")
	}

	if *watch {
		if err := watchAndRun(logger, *schemaPath, run); err != nil {
			logger.Fatal().Err(err).Msg("watch")
		}
	}
}

// selectTypes prompts for a subset of Module.Type entries and filters
// the modules down to the picked ones.
func selectTypes(modules asn1.Modules) (asn1.Modules, error) {
	var options []string
	for _, moduleName := range modules.ModuleNames() {
		for _, typeName := range modules.TypeNames(moduleName) {
			options = append(options, moduleName+"."+typeName)
		}
	}

	var picked []string
	prompt := &survey.MultiSelect{
		Message: "Types to generate:",
		Options: options,
		Default: options,
	}
	if err := survey.AskOne(prompt, &picked); err != nil {
		return nil, err
	}

	selected := make(map[string]bool, len(picked))
	for _, p := range picked {
		selected[p] = true
	}

	filtered := make(asn1.Modules)
	for moduleName, types := range modules {
		for typeName, ct := range types {
			if !selected[moduleName+"."+typeName] {
				continue
			}
			if filtered[moduleName] == nil {
				filtered[moduleName] = make(map[string]asn1.CompiledType)
			}
			filtered[moduleName][typeName] = ct
		}
	}
	if len(filtered) == 0 {
		return nil, fmt.Errorf("no types selected")
	}
	return filtered, nil
}

// watchAndRun blocks, regenerating on every write or atomic save of
// the schema file. Watching the directory rather than the file keeps
// editors that replace the file on save covered.
func watchAndRun(logger zerolog.Logger, schemaPath string, run func() error) error {
	absPath, err := filepath.Abs(schemaPath)
	if err != nil {
		return fmt.Errorf("absolute path: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(filepath.Dir(absPath)); err != nil {
		return fmt.Errorf("watch directory: %w", err)
	}

	logger.Info().Str("schema", absPath).Msg("watching schema for changes")
	filename := filepath.Base(absPath)

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Base(event.Name) != filename {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) != 0 {
				logger.Debug().Str("event", event.Op.String()).Msg("schema changed")
				if err := run(); err != nil {
					logger.Error().Err(err).Msg("regenerate failed")
				}
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Error().Err(err).Msg("watcher error")
		}
	}
}

func writeOutput(path, content string) error {
	if path == "" {
		fmt.Println(content)
		return nil
	}
	return os.WriteFile(path, []byte(content), 0o644)
}
