/*
 * Cherry - An OpenFlow Controller
 *
 * Copyright (C) 2015-2019 Samjung Data Service, Inc. All rights reserved.
 *
 *  Kitae Kim <superkkt@sds.co.kr>
 *  Donam Kim <donam.kim@sds.co.kr>
 *  Jooyoung Kang <jooyoung.kang@sds.co.kr>
 *  Changjin Choi <ccj9707@sds.co.kr>
 *
 * This program is free software; you can redistribute it and/or modify
 * it under the terms of the GNU General Public License as published by
 * the Free Software Foundation; either version 2 of the License, or
 * any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU General Public License along
 * with this program; if not, write to the Free Software Foundation, Inc.,
 * 51 Franklin Street, Fifth Floor, Boston, MA 02110-1301 USA.
 */

package main

import (
	"os"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/pkg/errors"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

func setDefaults() {
	viper.SetDefault("default.port", 6653)
	viper.SetDefault("default.log_level", "info")
	viper.SetDefault("default.log_backend", "stderr")
	viper.SetDefault("default.applications", "monitor, dynamic")
	viper.SetDefault("telemetry.interval", "1s")
	viper.SetDefault("slicing.streaming_port", 9999)
	viper.SetDefault("slicing.bandwidth_threshold", 8000000)
	viper.SetDefault("slicing.reference_dpid", 1)
	viper.SetDefault("slicing.reference_port", 3)
	viper.SetDefault("slicing.policy_file", "")
	viper.SetDefault("slicing.flood_limit", 0)
	viper.SetDefault("dynamic.flood_lower_path", false)
	viper.SetDefault("service.idle_timeout", 30)
	viper.SetDefault("rest.port", 7070)
	viper.SetDefault("rest.tls", false)
	viper.SetDefault("relay.port", 8765)
	viper.SetDefault("metrics.port", 9100)
}

func initConfig() {
	setDefaults()

	viper.SetConfigFile(*defaultConfigFile)
	// Read the config file.
	if err := viper.ReadInConfig(); err != nil {
		// Run with the defaults only if the user did not ask for a specific file.
		if !os.IsNotExist(err) || pflag.CommandLine.Changed("config") {
			logger.Fatalf("failed to read the config file: %v", err)
		}
		logger.Infof("config file %v does not exist, using the default configuration", *defaultConfigFile)
	} else {
		// Watching and re-reading config file whenever it changes.
		viper.OnConfigChange(func(e fsnotify.Event) {
			// Ignore the other operations to avoid reading empty config.
			if !e.Has(fsnotify.Write) {
				return
			}

			if loggerLeveled != nil {
				// Set log level for all modules
				loggerLeveled.SetLevel(getLogLevel(viper.GetString("default.log_level")), "")
			}
		})
		viper.WatchConfig()
	}

	if err := validateConfig(); err != nil {
		logger.Fatalf("failed to validate the configuration: %v", err)
	}
}

func validatePort(key string, allowZero bool) error {
	port := viper.GetInt(key)
	if port == 0 && allowZero {
		return nil
	}
	if port <= 0 || port > 0xFFFF {
		return errors.Errorf("invalid %v: %v", key, port)
	}

	return nil
}

func validateConfig() error {
	for _, key := range []string{"default.port", "slicing.streaming_port", "rest.port"} {
		if err := validatePort(key, false); err != nil {
			return err
		}
	}
	// Zero disables the listener.
	for _, key := range []string{"relay.port", "metrics.port"} {
		if err := validatePort(key, true); err != nil {
			return err
		}
	}
	if len(viper.GetString("default.log_level")) == 0 {
		return errors.New("invalid default.log_level")
	}
	switch strings.ToLower(viper.GetString("default.log_backend")) {
	case "stderr", "syslog":
	default:
		return errors.Errorf("invalid default.log_backend: %v", viper.GetString("default.log_backend"))
	}
	if _, err := parseApplications(); err != nil {
		return errors.Wrap(err, "invalid default.applications")
	}
	if viper.GetDuration("telemetry.interval") <= 0 {
		return errors.New("invalid telemetry.interval")
	}
	if viper.GetFloat64("slicing.bandwidth_threshold") <= 0 {
		return errors.New("invalid slicing.bandwidth_threshold")
	}
	if viper.GetInt("slicing.reference_port") <= 0 {
		return errors.New("invalid slicing.reference_port")
	}
	if viper.GetInt("slicing.flood_limit") < 0 {
		return errors.New("invalid slicing.flood_limit")
	}
	if timeout := viper.GetInt("service.idle_timeout"); timeout < 0 || timeout > 0xFFFF {
		return errors.New("invalid service.idle_timeout")
	}
	if viper.GetBool("rest.tls") {
		if len(viper.GetString("rest.cert_file")) == 0 || len(viper.GetString("rest.key_file")) == 0 {
			return errors.New("rest.tls requires rest.cert_file and rest.key_file")
		}
	}

	return nil
}

func parseApplications() ([]string, error) {
	result := []string{}
	// Remove spaces, and then split it using comma
	for _, v := range strings.Split(strings.Replace(viper.GetString("default.applications"), " ", "", -1), ",") {
		if v == "" {
			continue
		}
		result = append(result, v)
	}
	if len(result) == 0 {
		return nil, errors.New("empty application")
	}

	return result, nil
}
