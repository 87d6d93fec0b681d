package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/ruteri/hostkey-panel/api"
	"github.com/ruteri/hostkey-panel/api/clients"
	"github.com/ruteri/hostkey-panel/cmd/flags"
	"github.com/ruteri/hostkey-panel/hostkeys"
	"github.com/ruteri/hostkey-panel/interfaces"
	"github.com/urfave/cli/v2"
)

var flagKind *cli.StringFlag = &cli.StringFlag{
	Name:  "kind",
	Value: string(hostkeys.KindSSH),
	Usage: "source of the generated key: ssh, snakeoil or letsencrypt",
}
var flagWait *cli.BoolFlag = &cli.BoolFlag{
	Name:  "wait",
	Usage: "wait until the publication finishes",
}
var flagWaitTimeout *cli.DurationFlag = &cli.DurationFlag{
	Name:  "wait-timeout",
	Value: 10 * time.Minute,
	Usage: "give up waiting after this long",
}
var flagRequestTimeout *cli.DurationFlag = &cli.DurationFlag{
	Name:  "request-timeout",
	Value: 2 * time.Minute,
	Usage: "timeout of a single panel request",
}

const usage string = `Manage the OpenPGP host keys of the configured domains.

Every command prints the resulting status page, including the notifications
the panel produced for the request.`

func main() {
	app := &cli.App{
		Name:  "panelctl",
		Usage: usage,
		Flags: []cli.Flag{
			flags.ServerAddrFlag,
			flagRequestTimeout,
		},
		Commands: []*cli.Command{
			{
				Name:  "status",
				Usage: "show the keys of all configured domains",
				Action: func(cCtx *cli.Context) error {
					client, err := newClient(cCtx)
					if err != nil {
						return err
					}
					return printIndex(os.Stdout)(client.Index())
				},
			},
			{
				Name:      "generate",
				Usage:     "import a host key of a domain into an OpenPGP key",
				ArgsUsage: "<domain>",
				Flags:     []cli.Flag{flagKind},
				Action: func(cCtx *cli.Context) error {
					domain := cCtx.Args().First()
					if domain == "" {
						return fmt.Errorf("domain argument is required")
					}
					client, err := newClient(cCtx)
					if err != nil {
						return err
					}
					return printIndex(os.Stdout)(client.Generate(hostkeys.KeyKind(cCtx.String(flagKind.Name)), domain))
				},
			},
			{
				Name:      "key",
				Usage:     "show details of a key",
				ArgsUsage: "<fingerprint>",
				Action: func(cCtx *cli.Context) error {
					fingerprint, err := interfaces.NewFingerprint(cCtx.Args().First())
					if err != nil {
						return err
					}
					client, err := newClient(cCtx)
					if err != nil {
						return err
					}
					key, err := client.Key(fingerprint)
					if err != nil {
						return err
					}
					return printJSON(os.Stdout, key)
				},
			},
			{
				Name:      "publish",
				Usage:     "publish a key to the keyservers",
				ArgsUsage: "<fingerprint>",
				Flags:     []cli.Flag{flagWait, flagWaitTimeout},
				Action: func(cCtx *cli.Context) error {
					fingerprint, err := interfaces.NewFingerprint(cCtx.Args().First())
					if err != nil {
						return err
					}
					client, err := newClient(cCtx)
					if err != nil {
						return err
					}
					index, err := client.Publish(fingerprint)
					if err != nil || !cCtx.Bool(flagWait.Name) {
						return printIndex(os.Stdout)(index, err)
					}

					ctx, cancel := context.WithTimeout(cCtx.Context, cCtx.Duration(flagWaitTimeout.Name))
					defer cancel()
					done, err := client.WaitForPublish(ctx, time.Second)
					if err != nil {
						return err
					}
					done.Messages = append(index.Messages, done.Messages...)
					return printIndex(os.Stdout)(done, nil)
				},
			},
			{
				Name:  "cancel",
				Usage: "cancel a running key publication",
				Action: func(cCtx *cli.Context) error {
					client, err := newClient(cCtx)
					if err != nil {
						return err
					}
					return printIndex(os.Stdout)(client.Cancel())
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func newClient(cCtx *cli.Context) (*clients.PanelClient, error) {
	return clients.NewPanelClient(cCtx.String(flags.ServerAddrFlag.Name), cCtx.Duration(flagRequestTimeout.Name))
}

// printIndex writes the page and fails when the panel reported an error.
func printIndex(w io.Writer) func(*api.IndexResponse, error) error {
	return func(index *api.IndexResponse, err error) error {
		if err != nil {
			return err
		}
		if err := printJSON(w, index); err != nil {
			return err
		}
		for _, m := range index.Messages {
			if m.Severity == interfaces.SeverityError {
				return fmt.Errorf("panel: %s", m.Message)
			}
		}
		return nil
	}
}

func printJSON(w io.Writer, v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(out))
	return err
}
