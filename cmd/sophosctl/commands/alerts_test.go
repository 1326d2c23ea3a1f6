package commands_test

import (
	"testing"

	"github.com/fivetwenty-io/sophos-central/cmd/sophosctl/commands"
	"github.com/stretchr/testify/assert"
)

func TestNewAlertsCommand(t *testing.T) {
	t.Parallel()

	cmd := commands.NewAlertsCommand()
	assert.Equal(t, "alerts", cmd.Use)
	assert.Equal(t, []string{"alert"}, cmd.Aliases)
	assert.Equal(t, "Manage alerts", cmd.Short)

	// Check subcommands are added
	subcommands := cmd.Commands()
	assert.Len(t, subcommands, 3)

	commandNames := make([]string, 0, len(subcommands))
	for _, subcmd := range subcommands {
		commandNames = append(commandNames, subcmd.Name())
	}

	assert.Contains(t, commandNames, "list")
	assert.Contains(t, commandNames, "get")
	assert.Contains(t, commandNames, "action")
}

func TestAlertsListCommand(t *testing.T) {
	t.Parallel()

	root := commands.NewAlertsCommand()
	cmd := findSubcommand(root, "list")
	assert.Equal(t, "list", cmd.Use)
	assert.Equal(t, "List alerts", cmd.Short)
	assert.NotNil(t, cmd.RunE)

	// Check flags
	assert.NotNil(t, cmd.Flags().Lookup("all"))
	assert.NotNil(t, cmd.Flags().Lookup("page-size"))
	assert.NotNil(t, cmd.Flags().Lookup("max-items"))
	assert.NotNil(t, cmd.Flags().Lookup("severity"))
	assert.NotNil(t, cmd.Flags().Lookup("product"))
	assert.NotNil(t, cmd.Flags().Lookup("category"))

	pageSizeFlag := cmd.Flags().Lookup("page-size")
	assert.Equal(t, "50", pageSizeFlag.DefValue)
}

func TestAlertsGetCommand(t *testing.T) {
	t.Parallel()

	root := commands.NewAlertsCommand()
	cmd := findSubcommand(root, "get")
	assert.Equal(t, "get ALERT_ID", cmd.Use)
	assert.Equal(t, "Get alert details", cmd.Short)
	assert.NotNil(t, cmd.RunE)
	assert.NotNil(t, cmd.Args)
}

func TestAlertsActionCommand(t *testing.T) {
	t.Parallel()

	root := commands.NewAlertsCommand()
	cmd := findSubcommand(root, "action")
	assert.Equal(t, "action ALERT_ID", cmd.Use)
	assert.NotNil(t, cmd.RunE)
	assert.NotNil(t, cmd.Args)

	assert.NotNil(t, cmd.Flags().Lookup("action"))
	assert.NotNil(t, cmd.Flags().Lookup("message"))
}
