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
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"strings"
	"syscall"
	"time"

	"github.com/vincenzodan/SDN-Network-Slicing/api"
	"github.com/vincenzodan/SDN-Network-Slicing/log"
	"github.com/vincenzodan/SDN-Network-Slicing/network"
	"github.com/vincenzodan/SDN-Network-Slicing/northbound"
	"github.com/vincenzodan/SDN-Network-Slicing/northbound/app/learning"
	"github.com/vincenzodan/SDN-Network-Slicing/policy"
	"github.com/vincenzodan/SDN-Network-Slicing/telemetry"

	"github.com/op/go-logging"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	programName     = "slicer"
	programVersion  = "0.3.0"
	defaultLogLevel = logging.INFO
)

var (
	logger            = logging.MustGetLogger("main")
	loggerLeveled     logging.LeveledBackend
	showVersion       = pflag.Bool("version", false, "Show program version and exit")
	defaultConfigFile = pflag.String("config", fmt.Sprintf("/usr/local/etc/%v.yaml", programName), "absolute path of the configuration file")
)

func main() {
	runtime.GOMAXPROCS(runtime.NumCPU())
	pflag.Parse()
	if *showVersion {
		fmt.Printf("Version: %v\n", programVersion)
		os.Exit(0)
	}

	initConfig()
	if err := initLog(getLogLevel(viper.GetString("default.log_level"))); err != nil {
		logger.Fatalf("failed to init log: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	selector, err := initSelector()
	if err != nil {
		logger.Fatalf("failed to init the slicing policy: %v", err)
	}
	controller := network.NewController()
	collector := initCollector(ctx, controller)
	macs := learning.NewTable()

	manager, err := createAppManager(macs, selector, collector)
	if err != nil {
		logger.Fatalf("failed to create application manager: %v", err)
	}
	manager.AddEventSender(controller)

	initMetrics(collector)
	initRelay(collector)
	initAPIServer(controller, collector, selector, macs)
	initSignalHandler(controller, manager, cancel)

	listen(ctx, viper.GetInt("default.port"), controller)
}

func initSelector() (*policy.Selector, error) {
	table := policy.DefaultTable()
	if path := viper.GetString("slicing.policy_file"); path != "" {
		t, err := policy.Load(path)
		if err != nil {
			return nil, errors.Wrapf(err, "loading %v", path)
		}
		table = t
	}
	logger.Debugf("slicing policy: %v", table)

	return policy.NewSelector(table, viper.GetFloat64("slicing.bandwidth_threshold")), nil
}

func initCollector(ctx context.Context, controller *network.Controller) *telemetry.Collector {
	lister := telemetry.ListerFunc(func() []telemetry.Poller {
		devices := controller.Devices()
		result := make([]telemetry.Poller, 0, len(devices))
		for _, v := range devices {
			result = append(result, v)
		}
		return result
	})
	collector := telemetry.NewCollector(viper.GetDuration("telemetry.interval"), telemetry.NewEstimator(), lister)
	controller.SetStatsListener(collector)

	go func() {
		collector.Run(ctx)
		logger.Debug("telemetry collector terminated")
	}()

	return collector
}

func initMetrics(collector *telemetry.Collector) {
	port := viper.GetInt("metrics.port")
	if port == 0 {
		logger.Info("prometheus metrics are disabled")
		return
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	collector.AddObserver(telemetry.NewMetrics(registry))

	go func() {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
		addr := fmt.Sprintf(":%v", port)
		logger.Infof("prometheus metrics listening on %v", addr)
		if err := http.ListenAndServe(addr, mux); err != nil {
			logger.Fatalf("failed to run the metrics server: %v", err)
		}
	}()
}

func initRelay(collector *telemetry.Collector) {
	port := viper.GetInt("relay.port")
	if port == 0 {
		logger.Info("websocket relay is disabled")
		return
	}

	relay := api.NewRelay()
	collector.AddObserver(relay)
	go func() {
		if err := relay.Serve(uint16(port)); err != nil {
			logger.Fatalf("failed to run the websocket relay: %v", err)
		}
	}()
}

func initAPIServer(controller *network.Controller, collector *telemetry.Collector, selector *policy.Selector, macs *learning.Table) {
	srv := &api.Server{
		Controller: api.ControllerFunc(func() []api.Switch {
			devices := controller.Devices()
			result := make([]api.Switch, 0, len(devices))
			for _, v := range devices {
				result = append(result, v)
			}
			return result
		}),
		Telemetry: collector,
		Selector:  selector,
		MAC:       macs,
	}
	srv.Port = uint16(viper.GetInt("rest.port"))
	if viper.GetBool("rest.tls") == true {
		srv.TLS.Cert = viper.GetString("rest.cert_file")
		srv.TLS.Key = viper.GetString("rest.key_file")
	}
	srv.Reference.DPID = viper.GetUint64("slicing.reference_dpid")
	srv.Reference.Port = uint32(viper.GetInt("slicing.reference_port"))

	go func() {
		if err := srv.Serve(); err != nil {
			logger.Fatalf("failed to run the API server: %v", err)
		}
	}()
}

func initSignalHandler(controller *network.Controller, manager *northbound.Manager, cancel context.CancelFunc) {
	go func() {
		c := make(chan os.Signal, 5)
		signal.Notify(c, syscall.SIGTERM, syscall.SIGINT, syscall.SIGHUP)

		// Infinte loop.
		for {
			s := <-c
			if s == syscall.SIGTERM || s == syscall.SIGINT {
				// Graceful shutdown
				logger.Warning("Shutting down...")
				cancel()
				// Timeout for cancelation
				time.Sleep(2 * time.Second)
				os.Exit(0)
			} else if s == syscall.SIGHUP {
				fmt.Println("* Controller status:")
				fmt.Println(controller.String())
				fmt.Printf("\n* Manager status:\n")
				fmt.Println(manager.String())
			}
		}
	}()
}

func initLog(level logging.Level) error {
	var backend logging.Backend
	if strings.ToLower(viper.GetString("default.log_backend")) == "syslog" {
		v, err := log.NewSyslog(programName)
		if err != nil {
			return err
		}
		backend = v
	} else {
		backend = logging.NewLogBackend(os.Stderr, "", 0)
	}
	backend = logging.NewBackendFormatter(backend, logging.MustStringFormatter(`%{level}: %{shortpkg}.%{shortfunc}: %{message}`))

	loggerLeveled = logging.AddModuleLevel(backend)
	// Set log level for all modules
	loggerLeveled.SetLevel(level, "")
	logging.SetBackend(loggerLeveled)

	return nil
}

func getLogLevel(level string) logging.Level {
	ret, err := log.ParseLevel(level)
	if err != nil {
		logger.Infof("invalid log level=%v, defaulting to %v..", level, defaultLogLevel)
		return defaultLogLevel
	}

	return ret
}

func listen(ctx context.Context, port int, controller *network.Controller) {
	type KeepAliver interface {
		SetKeepAlive(keepalive bool) error
		SetKeepAlivePeriod(d time.Duration) error
	}

	listener, err := net.Listen("tcp", fmt.Sprintf(":%v", port))
	if err != nil {
		logger.Errorf("failed to listen on %v port: %v", port, err)
		return
	}
	defer listener.Close()
	logger.Infof("OpenFlow controller listening on %v", listener.Addr())

	// Connection dispatcher.
	f := func(c chan<- net.Conn) {
		for {
			conn, err := listener.Accept()
			if err != nil {
				// Check shutdown signal
				select {
				case <-ctx.Done():
					return
				default:
				}
				logger.Errorf("failed to accept a new connection: %v", err)
				time.Sleep(100 * time.Millisecond)
				continue
			}
			logger.Infof("new device is connected from %v", conn.RemoteAddr())

			// Pass the new connection into the backlog queue.
			c <- conn
		}
	}
	backlog := make(chan net.Conn, 32)
	go f(backlog)

	// Infinite loop
	for {
		select {
		case <-ctx.Done():
			logger.Debug("terminating the main listener loop...")
			return
		case conn := <-backlog:
			logger.Debug("fetching a new connection from the backlog..")
			if v, ok := conn.(KeepAliver); ok {
				logger.Debug("trying to enable socket keepalive..")
				if err := v.SetKeepAlive(true); err == nil {
					logger.Debug("setting socket keepalive period...")
					v.SetKeepAlivePeriod(time.Duration(5) * time.Second)
				} else {
					logger.Errorf("failed to enable socket keepalive: %v", err)
				}
			}
			controller.AddConnection(ctx, conn)
		}
	}
}

func createAppManager(macs *learning.Table, selector *policy.Selector, collector *telemetry.Collector) (*northbound.Manager, error) {
	manager := northbound.NewManager(macs, selector, collector)

	apps, err := parseApplications()
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse applications")
	}
	for _, v := range apps {
		if err := manager.Enable(v); err != nil {
			return nil, errors.Wrap(err, fmt.Sprintf("enabling %v", v))
		}
	}

	return manager, nil
}
