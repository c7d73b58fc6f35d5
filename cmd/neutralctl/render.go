package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/natefinch/atomic"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	neutralipc "github.com/neutralts/neutral-ipc-go"
)

var renderCmd = &cobra.Command{
	Use:   "render [template-file]",
	Short: "Render a template through the IPC server",
	Long: `Render ships a template reference and a data schema to the Neutral IPC
server and prints the rendered output. The template is either a server-side
file path argument or inline source via --source.

Data fragments from --data files (JSON or YAML) and --set overrides are
deep-merged in flag order: nested mappings combine key by key, later scalar
values win.

Examples:
  neutralctl render page.ntpl --data base.json --data overrides.yaml
  neutralctl render --source 'Message: {:;hello:}' --set data.hello=hi
  neutralctl render page.ntpl --data data.json --output page.html --watch`,
	Args: cobra.MaximumNArgs(1),
	RunE: runRender,
}

var (
	renderSource   string
	renderData     []string
	renderSet      []string
	renderEncoding string
	renderOutput   string
	renderWatch    bool
)

func init() {
	rootCmd.AddCommand(renderCmd)

	renderCmd.Flags().StringVarP(&renderSource, "source", "s", "", "inline template source instead of a file")
	renderCmd.Flags().StringArrayVarP(&renderData, "data", "d", nil, "JSON or YAML data file, repeatable, merged in order")
	renderCmd.Flags().StringArrayVar(&renderSet, "set", nil, "scalar override as dotted.path=value, repeatable")
	renderCmd.Flags().StringVar(&renderEncoding, "encoding", "json", "schema wire encoding (json, msgpack)")
	renderCmd.Flags().StringVarP(&renderOutput, "output", "o", "", "write rendered output to a file (atomic replace), default stdout")
	renderCmd.Flags().BoolVarP(&renderWatch, "watch", "w", false, "re-render when the template or data files change")
}

func runRender(cmd *cobra.Command, args []string) error {
	if renderSource == "" && len(args) == 0 {
		return fmt.Errorf("a template file argument or --source is required")
	}
	if renderSource != "" && len(args) > 0 {
		return fmt.Errorf("--source and a template file argument are mutually exclusive")
	}

	cfg, err := clientConfig()
	if err != nil {
		return err
	}
	enc, err := neutralipc.ParseEncoding(renderEncoding)
	if err != nil {
		return err
	}
	logger := newLogger()

	doRender := func() error {
		schema, err := buildSchema(renderData, renderSet)
		if err != nil {
			return err
		}

		opts := []neutralipc.Option{
			neutralipc.WithConfig(cfg),
			neutralipc.WithEncoding(enc),
			neutralipc.WithLogger(logger),
		}
		var tpl *neutralipc.Template
		if renderSource != "" {
			tpl, err = neutralipc.FromSource(renderSource, schema, opts...)
		} else {
			tpl, err = neutralipc.FromFile(args[0], schema, opts...)
		}
		if err != nil {
			return err
		}

		result, err := tpl.Render(cmd.Context())
		if err != nil {
			if result != nil {
				fmt.Fprintf(os.Stderr, "server status: %s %s %s\n",
					result.StatusCode, result.StatusText, result.StatusParam)
			}
			return err
		}
		if result.StatusCode != "" && result.StatusCode != "200" {
			fmt.Fprintf(os.Stderr, "status %s %s %s\n",
				result.StatusCode, result.StatusText, result.StatusParam)
		}
		return writeOutput(result.Output)
	}

	if err := doRender(); err != nil {
		if !renderWatch {
			return err
		}
		// in watch mode a failed first render is not fatal
		logger.Error("render failed", "err", err)
	}
	if !renderWatch {
		return nil
	}

	paths := append([]string{}, renderData...)
	if len(args) > 0 {
		paths = append(paths, args[0])
	}
	if len(paths) == 0 {
		return fmt.Errorf("--watch needs a template file or at least one --data file")
	}
	return watchAndRender(cmd, paths, doRender)
}

// buildSchema merges the data files and --set overrides, in that order.
func buildSchema(files, sets []string) (neutralipc.Schema, error) {
	builder := neutralipc.NewBuilder()
	for _, path := range files {
		fragment, err := readDataFile(path)
		if err != nil {
			return nil, err
		}
		builder.Merge(fragment)
	}
	for _, kv := range sets {
		fragment, err := setFragment(kv)
		if err != nil {
			return nil, err
		}
		builder.Merge(fragment)
	}
	return builder.Build()
}

func readDataFile(path string) (map[string]any, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read data file: %w", err)
	}

	var doc map[string]any
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(raw, &doc); err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
	default:
		if err := json.Unmarshal(raw, &doc); err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
	}
	return doc, nil
}

// setFragment turns "a.b.c=value" into the nested map {a:{b:{c:value}}},
// parsing value as bool, int, or float when possible.
func setFragment(kv string) (map[string]any, error) {
	key, value, ok := strings.Cut(kv, "=")
	if !ok || key == "" {
		return nil, fmt.Errorf("--set wants dotted.path=value, got %q", kv)
	}

	var parsed any = value
	if v, err := strconv.ParseBool(value); err == nil {
		parsed = v
	} else if v, err := strconv.ParseInt(value, 10, 64); err == nil {
		parsed = v
	} else if v, err := strconv.ParseFloat(value, 64); err == nil {
		parsed = v
	}

	parts := strings.Split(key, ".")
	fragment := map[string]any{parts[len(parts)-1]: parsed}
	for i := len(parts) - 2; i >= 0; i-- {
		fragment = map[string]any{parts[i]: fragment}
	}
	return fragment, nil
}

func writeOutput(content string) error {
	if renderOutput == "" {
		_, err := io.WriteString(os.Stdout, content)
		return err
	}
	if err := atomic.WriteFile(renderOutput, strings.NewReader(content)); err != nil {
		return fmt.Errorf("cannot write %s: %w", renderOutput, err)
	}
	return nil
}
