// Command gentestdata samples one of the built-in analytic test fields
// at the face centroids of a mesh and writes the values as JSON.
package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/sarich/tempestremap/internal/config"
	"github.com/sarich/tempestremap/internal/logger"
	"github.com/sarich/tempestremap/internal/meshio"
	"github.com/sarich/tempestremap/pkg/field"
	"github.com/sarich/tempestremap/pkg/mesh"
)

var (
	flagMesh     = flag.String("mesh", "", "Path to the mesh to sample on")
	flagTest     = flag.String("test", "y2b2", "Test field: constant|y2b2|y16b32|vortex")
	flagOut      = flag.String("out", "outTestData.json", "Path to write the sampled values")
	flagConfig   = flag.String("config", "", "Path to config file")
	flagLogLevel = flag.String("log-level", "", "Log level: debug|info|warn|error")
	flagLogFile  = flag.String("log-file", "", "Also log to this file, with rotation")
)

// dataDoc pairs the sampled values with the field they came from, one
// value per mesh face in face order.
type dataDoc struct {
	Field  string    `json:"field"`
	Values []float64 `json:"values"`
}

func main() {
	flag.Parse()
	os.Exit(run())
}

func run() int {
	cfg, err := config.Load(*flagConfig)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}
	if *flagLogLevel != "" {
		cfg.Logging.Level = *flagLogLevel
	}
	if *flagLogFile != "" {
		cfg.Logging.LogFile = *flagLogFile
	}
	log := logger.New(cfg.Logging.Level, cfg.Logging.LogFile)
	defer log.Sync()

	if *flagMesh == "" {
		fmt.Fprintln(os.Stderr, "usage: gentestdata --mesh mesh.json [--test y2b2] [--out outTestData.json]")
		return 2
	}

	kind, err := field.ParseKind(*flagTest)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}

	m, err := meshio.ReadFile(*flagMesh)
	if err != nil {
		log.Error("reading mesh", zap.Error(err))
		return exitCode(err)
	}

	doc := dataDoc{Field: kind.String(), Values: kind.Sample(m)}
	if err := writeFile(*flagOut, &doc); err != nil {
		log.Error("writing test data", zap.Error(err))
		return 2
	}
	log.Info("test data written", zap.String("path", *flagOut),
		zap.Stringer("field", kind), zap.Int("values", len(doc.Values)))
	return 0
}

func writeFile(path string, doc *dataDoc) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := json.NewEncoder(f).Encode(doc); err != nil {
		f.Close()
		return fmt.Errorf("%s: %w", path, err)
	}
	return f.Close()
}

// exitCode maps malformed input meshes to 1 and everything unexpected
// to 2.
func exitCode(err error) int {
	var inputErr *mesh.InputError
	if errors.As(err, &inputErr) {
		return 1
	}
	return 2
}
