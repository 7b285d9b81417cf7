package mmrtesting

import (
	"context"
	"testing"

	"github.com/datatrails/go-datatrails-common/azblob"
	"github.com/datatrails/go-datatrails-common/logger"
	"github.com/stretchr/testify/require"
)

type TestContext struct {
	Log    logger.Logger
	Storer *azblob.Storer
	T      *testing.T

	container string
}

type TestConfig struct {
	TestLabelPrefix string
	Container       string // can be "" defaults to TestLabelPrefix
}

func NewTestContext(t *testing.T, cfg TestConfig) TestContext {
	c := TestContext{
		T: t,
	}
	logger.New("INFO")
	c.Log = logger.Sugar.WithServiceName(cfg.TestLabelPrefix)

	c.container = cfg.Container
	if c.container == "" {
		c.container = cfg.TestLabelPrefix
	}
	return c
}

func (c *TestContext) GetLog() logger.Logger { return c.Log }

// GetStorer connects to the blob store emulator on first use. Only tests
// built with the azurite tag should call it.
func (c *TestContext) GetStorer() *azblob.Storer {
	if c.Storer != nil {
		return c.Storer
	}

	var err error
	c.Storer, err = azblob.NewDev(azblob.NewDevConfigFromEnv(), c.container)
	if err != nil {
		c.T.Fatalf("failed to connect to blob store emulator: %v", err)
	}
	client := c.Storer.GetServiceClient()
	// Note: we expect a 'already exists' error here and  ignore it.
	_, _ = client.CreateContainer(context.Background(), c.container, nil)

	return c.Storer
}

// DBPath returns a fresh directory for an on disk store, removed when the
// test completes.
func (c *TestContext) DBPath() string {
	return c.T.TempDir()
}

func (c *TestContext) DeleteBlobsByPrefix(blobPrefixPath string) {
	var err error
	var r *azblob.ListerResponse
	var blobs []string

	storer := c.GetStorer()

	var marker azblob.ListMarker
	for {
		r, err = storer.List(
			context.Background(),
			azblob.WithListPrefix(blobPrefixPath), azblob.WithListMarker(marker))

		require.NoError(c.T, err)

		for _, i := range r.Items {
			blobs = append(blobs, *i.Name)
		}
		if len(r.Items) == 0 || r.Marker == nil {
			break
		}
		marker = r.Marker
	}
	for _, blobPath := range blobs {
		err = storer.Delete(context.Background(), blobPath)
		require.NoError(c.T, err)
	}
}
