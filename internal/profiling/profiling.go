// SPDX-License-Identifier: Apache-2.0

package profiling

import (
	"errors"
	"fmt"
	"net/http"
	_ "net/http/pprof"
	"os"
	"runtime"
	"runtime/pprof"
)

// Config enables the profiles to produce. Empty fields are disabled.
type Config struct {
	// ServerAddress exposes the /debug/pprof endpoints, for long reads such
	// as unbounded kafka topics.
	ServerAddress string
	CPUFile       string
	MemoryFile    string
}

// Start begins profiling as configured. The returned function stops the cpu
// profile and writes the memory profile.
func Start(cfg Config) (func() error, error) {
	if cfg.ServerAddress != "" {
		startServer(cfg.ServerAddress)
	}

	stopCPU := func() error { return nil }
	if cfg.CPUFile != "" {
		var err error
		if stopCPU, err = startCPUProfile(cfg.CPUFile); err != nil {
			return nil, err
		}
	}

	return func() error {
		err := stopCPU()
		if cfg.MemoryFile != "" {
			err = errors.Join(err, writeMemoryProfile(cfg.MemoryFile))
		}
		return err
	}, nil
}

func startServer(address string) {
	// by adding _ "net/http/pprof" the profiling endpoint attaches to the
	// default server
	go func() {
		http.ListenAndServe(address, nil) //nolint:gosec
	}()
}

func startCPUProfile(fileName string) (func() error, error) {
	cpuFile, err := os.Create(fileName)
	if err != nil {
		return nil, fmt.Errorf("creating cpu profile file: %w", err)
	}
	if err := pprof.StartCPUProfile(cpuFile); err != nil {
		cpuFile.Close()
		return nil, fmt.Errorf("starting cpu profile: %w", err)
	}

	return func() error {
		pprof.StopCPUProfile()
		return cpuFile.Close()
	}, nil
}

func writeMemoryProfile(fileName string) error {
	memFile, err := os.Create(fileName)
	if err != nil {
		return fmt.Errorf("creating memory profile file: %w", err)
	}
	defer memFile.Close()

	runtime.GC() // get up-to-date statistics
	// allocs has the same content as go test -memprofile
	if err := pprof.Lookup("allocs").WriteTo(memFile, 0); err != nil {
		return fmt.Errorf("writing memory profile: %w", err)
	}
	return nil
}
