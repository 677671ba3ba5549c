package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"
)

func TestSetupLogger(t *testing.T) {
	tests := []struct {
		level   string
		wantErr bool
	}{
		{level: "debug"},
		{level: "info"},
		{level: "warn"},
		{level: "error"},
		{level: "WARN"},
		{level: "verbose", wantErr: true},
		{level: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run("level "+tt.level, func(t *testing.T) {
			app := &cli.App{
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "log-level", Value: tt.level},
				},
				Action: setupLogger,
				// Prevent cli.Exit errors from calling os.Exit and
				// killing the test process before assertions run.
				ExitErrHandler: func(*cli.Context, error) {},
			}
			err := app.Run([]string{"minutes"})
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), "invalid log level")
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestReembedFlags_EmbeddingModelRequired(t *testing.T) {
	app := &cli.App{
		Commands: []*cli.Command{
			{
				Name:   "reembed",
				Action: func(c *cli.Context) error { return nil },
				Flags: []cli.Flag{
					dbFlag(),
					&cli.StringFlag{
						Name:     "embedding-model",
						Required: true,
					},
				},
			},
		},
	}

	err := app.Run([]string{"minutes", "reembed", "--db", t.TempDir()})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "embedding-model")
}

func TestDBFlagRequired(t *testing.T) {
	app := &cli.App{
		Commands: []*cli.Command{
			{
				Name:   "status",
				Action: func(c *cli.Context) error { return nil },
				Flags:  []cli.Flag{dbFlag()},
			},
		},
	}

	err := app.Run([]string{"minutes", "status"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "db")
}
