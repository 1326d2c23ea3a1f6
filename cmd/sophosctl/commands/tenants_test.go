package commands_test

import (
	"testing"

	"github.com/fivetwenty-io/sophos-central/cmd/sophosctl/commands"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTenantsCommand(t *testing.T) {
	t.Parallel()

	cmd := commands.NewTenantsCommand()
	assert.Equal(t, "tenants", cmd.Use)
	assert.Equal(t, []string{"tenant"}, cmd.Aliases)
	assert.Equal(t, "Manage tenants", cmd.Short)

	subcommands := cmd.Commands()
	assert.Len(t, subcommands, 2)

	commandNames := make([]string, 0, len(subcommands))
	for _, subcmd := range subcommands {
		commandNames = append(commandNames, subcmd.Name())
	}

	assert.Contains(t, commandNames, "list")
	assert.Contains(t, commandNames, "get")
}

func TestTenantsListCommand(t *testing.T) {
	t.Parallel()

	cmd := commands.NewTenantsCommand()
	listCmd := findSubcommand(cmd, "list")
	require.NotNil(t, listCmd)

	allFlag := listCmd.Flags().Lookup("all")
	require.NotNil(t, allFlag)
	assert.Equal(t, "false", allFlag.DefValue)

	pageSizeFlag := listCmd.Flags().Lookup("page-size")
	require.NotNil(t, pageSizeFlag)
	assert.Equal(t, "50", pageSizeFlag.DefValue)

	maxItemsFlag := listCmd.Flags().Lookup("max-items")
	require.NotNil(t, maxItemsFlag)
	assert.Equal(t, "0", maxItemsFlag.DefValue)
}

func TestTenantsGetCommand(t *testing.T) {
	t.Parallel()

	cmd := commands.NewTenantsCommand()
	getCmd := findSubcommand(cmd, "get")
	require.NotNil(t, getCmd)
	assert.Equal(t, "get TENANT_ID", getCmd.Use)
	assert.Equal(t, "Get tenant details", getCmd.Short)
}
