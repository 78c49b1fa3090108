package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"syscall"

	_ "github.com/joho/godotenv/autoload"
	"github.com/takama/daemon"
)

const (
	// name of the service
	serviceName        = "kagebotservice"
	serviceDescription = "Kage Hero daily reward claim service"

	usage = "Usage: kagebot [-config file] [-debug] install | remove | start | stop | status | serve"
)

// Service has embedded daemon
type Service struct {
	daemon.Daemon

	configFile string
	config     Configuration
	notifier   *Notifier
}

// manage by daemon commands or run the server
func (service *Service) manage(args []string) (string, error) {
	command := "serve"
	if len(args) > 0 {
		command = args[0]
	}

	switch command {
	case "install":
		return service.Install("-config", service.configFile, "serve")
	case "remove":
		return service.Remove()
	case "start":
		return service.Start()
	case "stop":
		return service.Stop()
	case "status":
		return service.Status()
	case "serve":
		return service.serve()
	default:
		return usage, nil
	}
}

func (service *Service) serve() (string, error) {
	web := &WebConfig{}
	if err := web.InitWebConfig(service.config, service.notifier); err != nil {
		return "error while initialize web app", err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := web.Serve(ctx); err != nil {
		_ = service.notifier.Stopped(fmt.Sprintf("http server failed.\n%v", err))
		return "http server failed", err
	}

	stdlog.Info().Msg("got stop signal")
	_ = service.notifier.Stopped("Daemon was interruped by system signal")
	return "Daemon was interruped by system signal", nil
}

func main() {
	configFile := flag.String("config", "config.json", "configuration file")
	debug := flag.Bool("debug", false, "debug logging")
	flag.Parse()

	if abs, err := filepath.Abs(*configFile); err == nil {
		*configFile = abs
	}

	config, err := ReadConfiguration(*configFile)
	if err != nil {
		errlog.Error().Err(err).Msg("Invalid configuration file")
		os.Exit(1)
	}

	if *debug || config.Debug {
		setupLogging(os.Stdout, os.Stderr, true)
	}
	if config.LogFile != "" {
		defer logToFile(config.LogFile, *debug || config.Debug).Close()
	}

	daemonType := daemon.SystemDaemon
	if runtime.GOOS == "darwin" {
		daemonType = daemon.UserAgent
	}

	srv, err := daemon.New(serviceName, serviceDescription, daemonType)
	if err != nil {
		errlog.Error().Err(err).Msg("can't create daemon")
		os.Exit(1)
	}

	service := &Service{
		Daemon:     srv,
		configFile: *configFile,
		config:     config,
		notifier:   NewNotifier(config.MailSettings),
	}

	status, err := service.manage(flag.Args())
	if err != nil {
		errlog.Error().Err(err).Msg(status)
		os.Exit(1)
	}
	fmt.Println(status)
}
