package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/huh/spinner"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"targetwatch/config"
	"targetwatch/internal/logging"
	"targetwatch/internal/panel"
	"targetwatch/internal/pause"
	"targetwatch/internal/pubsub"
	"targetwatch/internal/remote"
	"targetwatch/internal/report"
	"targetwatch/internal/timeutil"
	"targetwatch/internal/viewmodel"
)

var spinnerStyle = lipgloss.NewStyle().MarginLeft(2).Foreground(lipgloss.Color("#f7c0af"))

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create dashboard.yaml interactively",
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := config.GetConfigFile()
		if err != nil {
			return err
		}

		var (
			baseURL   = config.DefaultBaseURL
			instance  string
			targetIDs string
			overwrite = true
		)

		fields := []huh.Field{
			huh.NewInput().
				Title("Backend URL").
				Value(&baseURL).
				Validate(config.ValidateBaseURL),
			huh.NewInput().
				Title("Instance name").
				Value(&instance).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return errors.New("instance name cannot be empty")
					}
					return nil
				}),
			huh.NewInput().
				Title("Target ids").
				Description("Comma separated").
				Value(&targetIDs),
		}
		if _, err := os.Stat(path); err == nil {
			overwrite = false
			fields = append(fields, huh.NewConfirm().
				Title(fmt.Sprintf("Overwrite %s?", path)).
				Value(&overwrite))
		}

		if err := huh.NewForm(huh.NewGroup(fields...)).Run(); err != nil {
			return err
		}
		if !overwrite {
			fmt.Println("Left existing config untouched")
			return nil
		}

		dashboard := &config.Dashboard{
			Server: config.ServerConfig{BaseURL: baseURL, Timeout: config.Duration(config.DefaultTimeout)},
			UI: config.UIConfig{
				PanelPadding:      config.DefaultPanelPadding,
				AnimationFrames:   config.DefaultAnimationFrames,
				AnimationInterval: config.Duration(config.DefaultAnimationInterval),
			},
			Instances: []config.InstanceConfig{{Name: strings.TrimSpace(instance)}},
		}
		for _, id := range strings.Split(targetIDs, ",") {
			if id = strings.TrimSpace(id); id != "" {
				dashboard.Instances[0].Targets = append(dashboard.Instances[0].Targets, config.TargetConfig{ID: id})
			}
		}
		if err := dashboard.Validate(); err != nil {
			return err
		}
		if err := config.SaveDashboard(path, dashboard); err != nil {
			return err
		}
		fmt.Printf("Wrote %s\n", path)
		return nil
	},
}

var pauseCmd = &cobra.Command{
	Use:   "pause <instance> <target>",
	Short: "Toggle pause/resume of a target",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := logging.Setup(os.Stderr, logLevel); err != nil {
			return err
		}
		instance, targetID := args[0], args[1]

		dashboard, board, err := loadBoard(instance, targetID)
		if err != nil {
			return err
		}
		client, err := remote.NewClient(dashboard.Server.BaseURL, dashboard.Timeout())
		if err != nil {
			return err
		}

		err = runWithSpinner(fmt.Sprintf("Toggling pause for %s/%s...", instance, targetID), func() error {
			_, err := pause.NewController(board, client).Toggle(cmd.Context(), instance, targetID)
			return err
		})
		if err != nil {
			return err
		}
		// The backend does not report the resulting state, only the ack.
		fmt.Fprintf(cmd.OutOrStdout(), "Pause toggle acknowledged for %s/%s\n", instance, targetID)
		return nil
	},
}

var reportCmd = &cobra.Command{
	Use:   "report <instance> <target>",
	Short: "Generate a report for a target",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := logging.Setup(os.Stderr, logLevel); err != nil {
			return err
		}
		instance, targetID := args[0], args[1]
		ctx := cmd.Context()

		dashboard, board, err := loadBoard(instance, targetID)
		if err != nil {
			return err
		}
		client, err := remote.NewClient(dashboard.Server.BaseURL, dashboard.Timeout())
		if err != nil {
			return err
		}
		database, store, history, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer database.Close()

		broker := pubsub.NewBroker[pubsub.TargetRef](1)
		defer broker.Shutdown()
		events := broker.Subscribe(ctx)

		err = runWithSpinner(fmt.Sprintf("Generating report for %s/%s...", instance, targetID), func() error {
			return report.NewRequester(board, client, broker).Generate(ctx, instance, targetID)
		})
		if err != nil {
			return err
		}

		panels := panel.NewManager(board, store, panel.Options{Padding: dashboard.UI.PanelPadding, Frames: dashboard.UI.AnimationFrames})
		evt := <-events
		if err := report.NewSyncer(board, panels, history).Resync(ctx, evt.Payload); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Report generated for %s/%s\n", instance, targetID)
		return nil
	},
}

var panelCmd = &cobra.Command{
	Use:   "panel",
	Short: "Inspect or change persisted detail panel state",
}

var panelToggleCmd = &cobra.Command{
	Use:   "toggle <target|element-id>",
	Short: "Collapse or expand a target's detail panel",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withPanels(cmd, args[0], func(m *panel.Manager, t *viewmodel.Target) error {
			tr, err := m.Toggle(cmd.Context(), t.ID)
			if err != nil {
				return err
			}
			tr.Finish()
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", t.ID, describePanel(t))
			return nil
		})
	},
}

var panelShowCmd = &cobra.Command{
	Use:   "show <target|element-id>",
	Short: "Show a target's stored detail panel state",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withPanels(cmd, args[0], func(_ *panel.Manager, t *viewmodel.Target) error {
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", t.ID, describePanel(t))
			return nil
		})
	},
}

func init() {
	panelCmd.AddCommand(panelToggleCmd, panelShowCmd)
}

// runWithSpinner shows a spinner while action runs. Without a terminal the
// action runs plainly.
func runWithSpinner(title string, action func() error) error {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return action()
	}

	var actionErr error
	err := spinner.New().
		Title(title).
		Style(spinnerStyle).
		Action(func() {
			actionErr = action()
		}).
		Run()
	if err != nil {
		return err
	}
	return actionErr
}

// withPanels loads the stored state of the target named by arg onto a board.
// arg is a target id or an element id such as "details_7".
func withPanels(cmd *cobra.Command, arg string, fn func(*panel.Manager, *viewmodel.Target) error) error {
	ctx := cmd.Context()

	targetID, err := targetArg(arg)
	if err != nil {
		return err
	}
	dashboard, board, err := loadBoard("", targetID)
	if err != nil {
		return err
	}
	database, store, history, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer database.Close()
	if err := report.LoadHistory(ctx, history, board); err != nil {
		return err
	}

	m := panel.NewManager(board, store, panel.Options{Padding: dashboard.UI.PanelPadding, Frames: dashboard.UI.AnimationFrames})
	if err := m.ApplyStoredState(ctx, targetID); err != nil {
		return err
	}
	t, err := board.Target(targetID)
	if err != nil {
		return err
	}
	return fn(m, t)
}

func describePanel(t *viewmodel.Target) string {
	state := "expanded"
	if t.Panel.Collapsed {
		state = "collapsed"
	}
	return fmt.Sprintf("%s (last report %s)", state, timeutil.FormatTimestamp(t.LastReport))
}

// targetArg resolves an element id to its target unless arg is itself a
// configured target id.
func targetArg(arg string) (string, error) {
	path, err := config.EnsureConfigExists()
	if err != nil {
		return "", err
	}
	dashboard, err := config.LoadDashboard(path)
	if err != nil {
		return "", err
	}
	if _, _, err := dashboard.FindTarget(arg); err == nil {
		return arg, nil
	}
	if id, ok := viewmodel.TargetFromElementID(arg); ok {
		return id, nil
	}
	return arg, nil
}

// loadBoard builds a board from the dashboard config, adding the target
// when the config does not declare it so one-off commands still work.
func loadBoard(instance, targetID string) (*config.Dashboard, *viewmodel.Board, error) {
	path, err := config.EnsureConfigExists()
	if err != nil {
		return nil, nil, err
	}
	dashboard, err := config.LoadDashboard(path)
	if err != nil {
		return nil, nil, err
	}

	if _, _, err := dashboard.FindTarget(targetID); err != nil {
		if instance == "" {
			instance = "adhoc"
		}
		dashboard.Instances = append(dashboard.Instances, config.InstanceConfig{
			Name:    instance,
			Targets: []config.TargetConfig{{ID: targetID}},
		})
	}
	return dashboard, viewmodel.NewBoard(dashboard), nil
}
