//go:build integration

package archive

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/newthinker/walarchive/internal/core"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// localstackEndpoint starts a LocalStack container, or uses
// LOCALSTACK_ENDPOINT when one is already running.
func localstackEndpoint(t *testing.T) string {
	t.Helper()
	if endpoint := os.Getenv("LOCALSTACK_ENDPOINT"); endpoint != "" {
		return endpoint
	}

	ctx := context.Background()
	req := testcontainers.ContainerRequest{
		Image:        "localstack/localstack:3.0",
		ExposedPorts: []string{"4566/tcp"},
		Env: map[string]string{
			"SERVICES":       "s3",
			"DEFAULT_REGION": "us-east-1",
		},
		WaitingFor: wait.ForAll(
			wait.ForListeningPort("4566/tcp"),
			wait.ForHTTP("/_localstack/health").
				WithPort("4566/tcp").
				WithStartupTimeout(60*time.Second),
		),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		t.Fatalf("failed to start localstack container: %v", err)
	}
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("failed to get container host: %v", err)
	}
	port, err := container.MappedPort(ctx, "4566")
	if err != nil {
		t.Fatalf("failed to get container port: %v", err)
	}
	return fmt.Sprintf("http://%s:%s", host, port.Port())
}

func TestS3Storage_Integration(t *testing.T) {
	ctx := context.Background()
	endpoint := localstackEndpoint(t)

	store, err := NewS3(ctx, S3Config{
		Bucket:    "wal-archive",
		Endpoint:  endpoint,
		Region:    "us-east-1",
		AccessKey: "test",
		SecretKey: "test",
		Prefix:    "pg/main",
	})
	if err != nil {
		t.Fatalf("NewS3: %v", err)
	}
	if _, err := store.client.CreateBucket(ctx, &s3.CreateBucketInput{
		Bucket: aws.String("wal-archive"),
	}); err != nil {
		t.Fatalf("CreateBucket: %v", err)
	}

	src := filepath.Join(t.TempDir(), "segment")
	if err := os.WriteFile(src, []byte("segment data"), 0600); err != nil {
		t.Fatal(err)
	}

	name := "000000010000000000000001.gz"
	if err := store.Upload(ctx, src, name); err != nil {
		t.Fatalf("Upload: %v", err)
	}

	exists, err := store.Exists(ctx, name)
	if err != nil || !exists {
		t.Fatalf("Exists = %v, %v; want true, nil", exists, err)
	}
	exists, err = store.Exists(ctx, "000000010000000000000002")
	if err != nil || exists {
		t.Fatalf("Exists(missing) = %v, %v; want false, nil", exists, err)
	}

	data, err := store.Fetch(ctx, name)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if string(data) != "segment data" {
		t.Errorf("Fetch = %q", data)
	}

	if _, err := store.Fetch(ctx, "000000010000000000000002"); !errors.Is(err, core.ErrObjectNotFound) {
		t.Errorf("Fetch(missing) error = %v, want ErrObjectNotFound", err)
	}

	names, err := store.List(ctx, "")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(names) != 1 || names[0] != name {
		t.Errorf("List = %v, want [%s]", names, name)
	}

	if err := store.Delete(ctx, name); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	names, _ = store.List(ctx, "")
	if len(names) != 0 {
		t.Errorf("List after delete = %v", names)
	}
}
