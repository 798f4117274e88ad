// Command genrllmesh generates a regular longitude-latitude mesh on the
// unit sphere, optionally restricted to a longitude/latitude window.
package main

import (
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/sarich/tempestremap/internal/config"
	"github.com/sarich/tempestremap/internal/logger"
	"github.com/sarich/tempestremap/internal/meshio"
	"github.com/sarich/tempestremap/pkg/mesh"
)

var (
	flagLon      = flag.Int("lon", 128, "Number of longitude cells")
	flagLat      = flag.Int("lat", 64, "Number of latitude cells")
	flagLonBegin = flag.Float64("lon_begin", 0, "First longitude line in degrees")
	flagLonEnd   = flag.Float64("lon_end", 360, "Last longitude line in degrees")
	flagLatBegin = flag.Float64("lat_begin", -90, "First latitude line in degrees")
	flagLatEnd   = flag.Float64("lat_end", 90, "Last latitude line in degrees")
	flagFlip     = flag.Bool("flip", false, "Flip the latitude/longitude node ordering")
	flagGCOnly   = flag.Bool("gc-only", false, "Use great-circle edges everywhere instead of constant-latitude parallels")
	flagOut      = flag.String("out", "outRLLMesh.json", "Path to write the mesh")
	flagConfig   = flag.String("config", "", "Path to config file")
	flagLogLevel = flag.String("log-level", "", "Log level: debug|info|warn|error")
	flagLogFile  = flag.String("log-file", "", "Also log to this file, with rotation")
)

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

	opts := mesh.RLLOptions{
		Longitudes:       *flagLon,
		Latitudes:        *flagLat,
		LonBegin:         *flagLonBegin,
		LonEnd:           *flagLonEnd,
		LatBegin:         *flagLatBegin,
		LatEnd:           *flagLatEnd,
		FlipLatLon:       *flagFlip,
		GreatCirclesOnly: *flagGCOnly,
	}
	m, err := mesh.NewRLLMesh(opts)
	if err != nil {
		log.Error("generating mesh", zap.Error(err))
		return 1
	}

	if err := meshio.WriteFile(*flagOut, m); err != nil {
		log.Error("writing mesh", zap.Error(err))
		return 2
	}
	log.Info("mesh written", zap.String("path", *flagOut),
		zap.Int("nodes", len(m.Nodes)), zap.Int("faces", len(m.Faces)))
	return 0
}
