// cmd/main.go

package main

import (
	"BigText/pkg/utils"
	"BigText/pkg/version"
	"fmt"
	"github.com/google/gops/agent"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
	"os"
)

var logger = utils.GetLogger("bigtext")

func globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.BoolFlag{
			Name:    "verbose",
			Aliases: []string{"debug", "v"},
			Usage:   "enable debug log",
		},
		&cli.BoolFlag{
			Name:    "quiet",
			Aliases: []string{"q"},
			Usage:   "only warning and errors",
		},
		&cli.BoolFlag{
			Name:  "trace",
			Usage: "enable trace log",
		},
		&cli.StringFlag{
			Name:  "log",
			Usage: "append log to this file instead of stderr",
		},
		&cli.BoolFlag{
			Name:  "debug-agent",
			Usage: "start a gops agent on 127.0.0.1",
		},
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "YAML file with mapper settings",
			EnvVars: []string{"BIGTEXT_CONFIG"},
		},
		&cli.Int64Flag{
			Name:  "chunk-size",
			Usage: "bytes mapped per chunk",
		},
		&cli.Int64Flag{
			Name:  "max-line-width",
			Usage: "longest line in bytes that is shown completely",
		},
		&cli.IntFlag{
			Name:  "cache-chunks",
			Usage: "number of extra chunks kept mapped",
		},
		&cli.Int64Flag{
			Name:  "probe-rate",
			Usage: "limit line counting to this many bytes per second (0 for unlimited)",
		},
	}
}

func main() {
	cli.VersionFlag = &cli.BoolFlag{
		Name: "version", Aliases: []string{"V"},
		Usage: "print only the version",
	}
	app := &cli.App{
		Name:                 "bigtext",
		Usage:                "read huge text files line by line without loading them",
		Version:              version.Version(),
		EnableBashCompletion: true,
		Flags:                globalFlags(),
		Commands: []*cli.Command{
			countFlags(),
			showFlags(),
			copyFlags(),
			infoFlags(),
			followFlags(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		logger.Fatal(err)
	}
}

func setLoggerLevel(c *cli.Context) {
	switch {
	case c.Bool("trace"):
		utils.SetLogLevel(logrus.TraceLevel)
	case c.Bool("verbose"):
		utils.SetLogLevel(logrus.DebugLevel)
	case c.Bool("quiet"):
		utils.SetLogLevel(logrus.WarnLevel)
	default:
		utils.SetLogLevel(logrus.InfoLevel)
	}
	if name := c.String("log"); name != "" {
		if err := utils.SetOutFile(name); err != nil {
			logger.Warnf("log to %s: %s", name, err)
		}
	}
	setupAgent(c)
}

func setupAgent(c *cli.Context) {
	if !c.Bool("debug-agent") {
		return
	}
	for port := 6070; port < 6100; port++ {
		addr := fmt.Sprintf("127.0.0.1:%d", port)
		if err := agent.Listen(agent.Options{Addr: addr, ShutdownCleanup: true}); err == nil {
			logger.Debugf("debug agent listening on %s", addr)
			return
		}
	}
	logger.Warnf("no free port for the debug agent")
}
