// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package main

import (
	"encoding/json"
	"flag"
	"fmt"

	"github.com/devblok/potentia/config"
	"github.com/devblok/potentia/core"
	"github.com/devblok/potentia/core/vulkan"
	"github.com/sirupsen/logrus"
)

var envFile = flag.String("env", "", "Read settings from this dotenv file instead of .env")

func main() {
	flag.Parse()

	var envFiles []string
	if *envFile != "" {
		envFiles = append(envFiles, *envFile)
	}
	settings, err := config.Load(envFiles...)
	if err != nil {
		logrus.Fatal(err)
	}
	log, err := settings.Logger()
	if err != nil {
		logrus.Fatal(err)
	}

	driver, err := vulkan.New(nil)
	if err != nil {
		log.Fatal(err)
	}

	backend := core.NewBackend(driver, nil, settings.Core(), log)
	if err := backend.CreateInstance(); err != nil {
		log.Fatal(err)
	}

	infos, err := backend.PhysicalDevicesInfo()
	backend.Destroy()
	if err != nil {
		log.Fatal(err)
	}

	if bytes, err := json.MarshalIndent(infos, "", "  "); err == nil {
		fmt.Printf("%s\n", bytes)
	} else {
		log.Fatal(err)
	}
}
