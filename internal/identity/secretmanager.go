package identity

import (
	"context"
	"strings"

	secretmanager "cloud.google.com/go/secretmanager/apiv1"
	"cloud.google.com/go/secretmanager/apiv1/secretmanagerpb"
	"github.com/googleapis/gax-go/v2"
	"github.com/pkg/errors"
)

// SecretAccessor is the slice of the Secret Manager client used to load keys.
type SecretAccessor interface {
	AccessSecretVersion(ctx context.Context, req *secretmanagerpb.AccessSecretVersionRequest, opts ...gax.CallOption) (*secretmanagerpb.AccessSecretVersionResponse, error)
}

var _ SecretAccessor = (*secretmanager.Client)(nil)

// FetchSecret reads the payload of a secret version, e.g.
// projects/p/secrets/mint-authority/versions/latest.
func FetchSecret(ctx context.Context, accessor SecretAccessor, name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", errors.New("secret name is empty")
	}
	if !strings.Contains(name, "/versions/") {
		name += "/versions/latest"
	}

	resp, err := accessor.AccessSecretVersion(ctx, &secretmanagerpb.AccessSecretVersionRequest{Name: name})
	if err != nil {
		return "", errors.Wrapf(err, "failed to access secret version %s", name)
	}
	if resp == nil || resp.GetPayload() == nil || len(resp.GetPayload().GetData()) == 0 {
		return "", errors.Errorf("empty payload for secret %s", name)
	}

	return strings.TrimSpace(string(resp.GetPayload().GetData())), nil
}

func newSecretManagerClient(ctx context.Context) (*secretmanager.Client, error) {
	client, err := secretmanager.NewClient(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create secret manager client")
	}

	return client, nil
}
