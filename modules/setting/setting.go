// Copyright 2019 The Gitea Authors. All rights reserved.
// SPDX-License-Identifier: MIT

// Package setting maps ini configuration onto the option structs the
// library is constructed from.
package setting

import (
	"gopkg.in/ini.v1"
)

// LoadConfig reads the given ini file and returns the mapped service
// settings. A missing file yields the defaults.
func LoadConfig(customConf string) (*CsGraphService, error) {
	cfg := ini.Empty()
	if customConf != "" {
		if err := cfg.Append(customConf); err != nil {
			return nil, err
		}
	}

	return LoadConfigFrom(cfg)
}

// LoadConfigFrom maps already-parsed ini data onto the service settings
func LoadConfigFrom(cfg *ini.File) (*CsGraphService, error) {
	return loadCsGraphFrom(cfg)
}
