package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/younsl/ec2-inventory/internal/models"
	"github.com/younsl/ec2-inventory/pkg/config"
	"github.com/younsl/ec2-inventory/pkg/inventory"
)

const testConfig = `
regions: [ap-south-1, us-east-1]
accounts:
  "222222222222":
    account: Sandbox
    profile: sandbox
  "111111111111":
    account: Production
    aws_access_key_id: AKIAEXAMPLE
    aws_secret_access_key: secret
`

type staticLister []models.InstanceRecord

func (l staticLister) ListInstances(context.Context) ([]models.InstanceRecord, error) {
	return l, nil
}

type failingLister struct{ err error }

func (l failingLister) ListInstances(context.Context) ([]models.InstanceRecord, error) {
	return nil, l.err
}

func factoryFor(listers map[string]inventory.InstanceLister) inventory.ListerFactory {
	return func(_ context.Context, account models.AccountCredential, region string) (inventory.InstanceLister, error) {
		if lister, ok := listers[account.AccountID+"/"+region]; ok {
			return lister, nil
		}
		return staticLister(nil), nil
	}
}

func noDiscovery(context.Context) string { return "" }

func setup(t *testing.T) options {
	t.Helper()
	dir := t.TempDir()
	configPath := filepath.Join(dir, "accounts.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte(testConfig), 0o600))

	return options{
		configPath:   configPath,
		output:       filepath.Join(dir, "inventory.csv"),
		schemaPolicy: "widen",
	}
}

func csvLines(t *testing.T, path string) []string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return strings.Split(strings.TrimSuffix(string(data), "\n"), "\n")
}

func TestRunWritesAccountThenRegionOrder(t *testing.T) {
	opts := setup(t)
	factory := factoryFor(map[string]inventory.InstanceLister{
		"222222222222/ap-south-1": staticLister{{InstanceID: "i-s1", State: "running", PrivateIPAddress: "10.0.0.1", PublicIPAddress: "N/A"}},
		"222222222222/us-east-1":  staticLister{{InstanceID: "i-s2", State: "stopped", PrivateIPAddress: "10.0.0.2", PublicIPAddress: "N/A"}},
		"111111111111/ap-south-1": staticLister{{InstanceID: "i-p1", State: "running", PrivateIPAddress: "10.1.0.1", PublicIPAddress: "1.2.3.4",
			Tags: []models.Tag{{Key: "Name", Value: "api"}}}},
	})

	opts.showInstances = true
	var out bytes.Buffer
	require.NoError(t, run(context.Background(), opts, &out, factory, noDiscovery))

	assert.Equal(t, []string{
		"AccountId,AccountName,InstanceId,InstanceName,InstanceStatus,InternalIpAddress,Name,PublicIP,Region",
		"222222222222,Sandbox,i-s1,,running,10.0.0.1,,N/A,ap-south-1",
		"222222222222,Sandbox,i-s2,,stopped,10.0.0.2,,N/A,us-east-1",
		"111111111111,Production,i-p1,api,running,10.1.0.1,api,1.2.3.4,ap-south-1",
	}, csvLines(t, opts.output))
	assert.Contains(t, out.String(), "Created")
	assert.Contains(t, out.String(), "## EC2 Instances by State")
}

func TestRunTwiceWidensColumns(t *testing.T) {
	opts := setup(t)
	opts.regions = []string{"eu-west-1"}

	first := factoryFor(map[string]inventory.InstanceLister{
		"111111111111/eu-west-1": staticLister{{InstanceID: "i-1", Tags: []models.Tag{{Key: "A", Value: "a1"}}}},
	})
	require.NoError(t, run(context.Background(), opts, &bytes.Buffer{}, first, noDiscovery))
	firstLines := csvLines(t, opts.output)
	require.Len(t, firstLines, 2)

	second := factoryFor(map[string]inventory.InstanceLister{
		"111111111111/eu-west-1": staticLister{{InstanceID: "i-2", Tags: []models.Tag{{Key: "A", Value: "a2"}, {Key: "C", Value: "c2"}}}},
	})
	var out bytes.Buffer
	require.NoError(t, run(context.Background(), opts, &out, second, noDiscovery))

	lines := csvLines(t, opts.output)
	require.Len(t, lines, 3)
	assert.Equal(t, "A,AccountId,AccountName,C,InstanceId,InstanceName,InstanceStatus,InternalIpAddress,PublicIP,Region", lines[0])
	assert.Equal(t, "a1,111111111111,Production,,i-1,,,,,eu-west-1", lines[1])
	assert.Equal(t, "a2,111111111111,Production,c2,i-2,,,,,eu-west-1", lines[2])
	assert.Contains(t, out.String(), "New columns: C")
}

func TestRunReportsFailedPairs(t *testing.T) {
	opts := setup(t)
	factory := factoryFor(map[string]inventory.InstanceLister{
		"222222222222/us-east-1":  failingLister{err: errors.New("UnauthorizedOperation")},
		"111111111111/ap-south-1": staticLister{{InstanceID: "i-p1"}},
	})

	var out bytes.Buffer
	err := run(context.Background(), opts, &out, factory, noDiscovery)

	assert.ErrorContains(t, err, "1 of 4 account/region pairs failed")
	assert.FileExists(t, opts.output)
	assert.Contains(t, out.String(), "UnauthorizedOperation")
}

func TestRunFailFastLeavesFileUntouched(t *testing.T) {
	opts := setup(t)
	opts.failFast = true
	factory := factoryFor(map[string]inventory.InstanceLister{
		"222222222222/ap-south-1": staticLister{{InstanceID: "i-s1"}},
		"222222222222/us-east-1":  failingLister{err: errors.New("RequestLimitExceeded")},
	})

	err := run(context.Background(), opts, &bytes.Buffer{}, factory, noDiscovery)

	var apiErr *inventory.RemoteAPIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "us-east-1", apiErr.Region)
	assert.NoFileExists(t, opts.output)
}

func TestRunConfigurationErrors(t *testing.T) {
	opts := setup(t)

	bad := opts
	bad.schemaPolicy = "rewrite"
	var cfgErr *config.ConfigurationError
	require.ErrorAs(t, run(context.Background(), bad, &bytes.Buffer{}, factoryFor(nil), noDiscovery), &cfgErr)
	assert.Equal(t, "schema-policy", cfgErr.Field)

	bad = opts
	bad.regions = []string{"moon-1"}
	require.ErrorAs(t, run(context.Background(), bad, &bytes.Buffer{}, factoryFor(nil), noDiscovery), &cfgErr)
	assert.Equal(t, "regions", cfgErr.Field)

	bad = opts
	bad.configPath = filepath.Join(t.TempDir(), "missing.yaml")
	require.ErrorAs(t, run(context.Background(), bad, &bytes.Buffer{}, factoryFor(nil), noDiscovery), &cfgErr)
}

func TestResolveRegions(t *testing.T) {
	ctx := context.Background()
	discovered := func(context.Context) string { return "eu-central-1" }

	regions, err := resolveRegions(ctx, []string{"us-west-2"}, []string{"ap-south-1"}, discovered)
	require.NoError(t, err)
	assert.Equal(t, []string{"us-west-2"}, regions)

	regions, err = resolveRegions(ctx, nil, []string{"ap-south-1"}, discovered)
	require.NoError(t, err)
	assert.Equal(t, []string{"ap-south-1"}, regions)

	regions, err = resolveRegions(ctx, nil, nil, discovered)
	require.NoError(t, err)
	assert.Equal(t, []string{"eu-central-1"}, regions)

	unlisted := func(context.Context) string { return "ap-southeast-5" }
	regions, err = resolveRegions(ctx, nil, nil, unlisted)
	require.NoError(t, err)
	assert.Equal(t, []string{"ap-southeast-5"}, regions)

	regions, err = resolveRegions(ctx, []string{"mx-central-1"}, nil, noDiscovery)
	require.NoError(t, err)
	assert.Equal(t, []string{"mx-central-1"}, regions)

	regions, err = resolveRegions(ctx, nil, nil, noDiscovery)
	require.NoError(t, err)
	assert.Equal(t, []string{"us-east-1"}, regions)
}

func TestVersionFlag(t *testing.T) {
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"--version"})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), "ec2-inventory version")
}
