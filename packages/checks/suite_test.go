package checks_test

import (
	"context"
	"net/http/httptest"
	"testing"

	"github.com/abdul-hamid-achik/apiprobe/packages/checks"
	"github.com/abdul-hamid-achik/apiprobe/packages/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault_Order(t *testing.T) {
	suite := checks.Default()

	names := make([]string, len(suite))
	for i, c := range suite {
		names[i] = c.Name
	}
	assert.Equal(t, []string{"root", "create_status", "list_status"}, names)
}

func TestDefault_Captures(t *testing.T) {
	backend := mock.NewServer()
	srv := httptest.NewServer(backend.Handler())
	defer srv.Close()
	target := checks.NewTarget(srv.URL, nil)

	suite := checks.Default(checks.WithClientName(func() string { return "fixed_name" }))
	ctx := context.Background()

	captures, err := suite[0].Run(ctx, target)
	require.NoError(t, err)
	assert.Nil(t, captures)

	captures, err = suite[1].Run(ctx, target)
	require.NoError(t, err)
	assert.Equal(t, "fixed_name", captures["client_name"])
	require.Len(t, backend.Records(), 1)
	assert.Equal(t, backend.Records()[0].ID, captures["id"])

	captures, err = suite[2].Run(ctx, target)
	require.NoError(t, err)
	assert.Equal(t, 1, captures["count"])
}

func TestDefault_CreateFailureKeepsClientName(t *testing.T) {
	srv := httptest.NewServer(mock.NewServer(
		mock.WithFault("POST", "/api/status", mock.Fault{StatusCode: 500}),
	).Handler())
	defer srv.Close()

	suite := checks.Default(checks.WithClientName(func() string { return "fixed_name" }))
	captures, err := suite[1].Run(context.Background(), checks.NewTarget(srv.URL, nil))

	assert.Error(t, err)
	assert.Equal(t, "fixed_name", captures["client_name"])
	assert.NotContains(t, captures, "id")
}
