// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package main

import (
	"flag"
	"os"
	"runtime"
	"runtime/pprof"
	"runtime/trace"

	"github.com/devblok/potentia/assets"
	"github.com/devblok/potentia/config"
	"github.com/devblok/potentia/core"
	"github.com/devblok/potentia/core/vulkan"
	"github.com/devblok/potentia/window"
	"github.com/sirupsen/logrus"
)

func init() {
	runtime.LockOSThread()
}

var (
	envFile      = flag.String("env", "", "Read settings from this dotenv file instead of .env")
	cpuProfile   = flag.String("cpuprof", "", "Profile CPU usage to file")
	traceProfile = flag.String("trace", "", "Trace output for profiling")
)

func main() {
	flag.Parse()
	if err := profile(run); err != nil {
		logrus.WithError(err).Error("potentia exited")
		os.Exit(1)
	}
}

// profile runs fn with the requested profiles, stopping them once fn returns
func profile(fn func() error) error {
	if *cpuProfile != "" {
		f, err := os.Create(*cpuProfile)
		if err != nil {
			panic(err)
		}
		defer f.Close()
		if err := pprof.StartCPUProfile(f); err != nil {
			panic(err)
		}
		defer pprof.StopCPUProfile()
	}

	if *traceProfile != "" {
		f, err := os.Create(*traceProfile)
		if err != nil {
			panic(err)
		}
		defer f.Close()
		if err := trace.Start(f); err != nil {
			panic(err)
		}
		defer trace.Stop()
	}

	return fn()
}

func run() error {
	var envFiles []string
	if *envFile != "" {
		envFiles = append(envFiles, *envFile)
	}
	settings, err := config.Load(envFiles...)
	if err != nil {
		return err
	}
	log, err := settings.Logger()
	if err != nil {
		return err
	}

	files, closeFiles, err := assets.Open(settings.Assets, settings.Archive)
	if err != nil {
		return err
	}
	defer closeFiles()

	if err := window.Init(); err != nil {
		return err
	}
	defer window.Quit()

	driver, err := vulkan.New(window.ProcAddr())
	if err != nil {
		return err
	}

	w, err := window.New(settings.Title, settings.Width, settings.Height)
	if err != nil {
		return err
	}
	defer w.Destroy()

	cfg := settings.Core()
	backend := core.NewBackend(driver, w, cfg, log)
	defer backend.Destroy()
	if err := backend.BringUp(files); err != nil {
		return err
	}

	timeService := core.NewTime(cfg.Time)
	defer timeService.Stop()

	for range timeService.EventTicker().C {
		if window.PollQuit() {
			break
		}
	}
	log.Info("event loop exited")
	return nil
}
