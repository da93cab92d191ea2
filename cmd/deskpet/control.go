package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/1broseidon/deskpet/internal/ipc"
	"github.com/1broseidon/deskpet/internal/peers"
)

// parseToggle accepts on/off style arguments; no argument means on.
func parseToggle(args []string) (bool, error) {
	if len(args) == 0 {
		return true, nil
	}
	switch strings.ToLower(args[0]) {
	case "on", "true", "yes", "1":
		return true, nil
	case "off", "false", "no", "0":
		return false, nil
	}
	return false, fmt.Errorf("expected on or off, got %q", args[0])
}

func addPetFlag(cmd *cobra.Command) {
	cmd.Flags().IntVar(&petOrdinal, "pet", 0, "ordinal of the pet to talk to (see 'deskpet peers')")
}

func newControlCmds() []*cobra.Command {
	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "show a running pet's state",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := ipc.NewClient(petOrdinal).Status()
			if err != nil {
				return err
			}
			fmt.Printf("pet:          %d (pid %d, window 0x%x)\n", st.Ordinal, st.PID, st.WindowID)
			fmt.Printf("position:     %.0f,%.0f %.0fx%.0f\n", st.X, st.Y, st.Width, st.Height)
			fmt.Printf("velocity:     %.1f,%.1f px/s\n", st.VelocityX, st.VelocityY)
			fmt.Printf("animation:    %s\n", st.Animation)
			fmt.Printf("stage:        %s (%s)\n", st.Stage, strings.Join(st.Stages, ", "))
			fmt.Printf("keep_anim:    %v\n", st.KeepAnim)
			fmt.Printf("transparent:  %v\n", st.Transparent)
			fmt.Printf("grounded:     %v\n", st.Grounded)
			fmt.Printf("fps:          %d\n", st.FPS)
			fmt.Printf("uptime:       %s\n", time.Duration(st.UptimeSeconds)*time.Second)
			return nil
		},
	}

	keepCmd := &cobra.Command{
		Use:   "keep [on|off]",
		Short: "pin or release the current animation",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			on, err := parseToggle(args)
			if err != nil {
				return err
			}
			return ipc.NewClient(petOrdinal).SetKeepAnim(on)
		},
	}

	transparentCmd := &cobra.Command{
		Use:   "transparent [on|off]",
		Short: "make the pet click-through",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			on, err := parseToggle(args)
			if err != nil {
				return err
			}
			return ipc.NewClient(petOrdinal).SetTransparent(on)
		},
	}

	stageCmd := &cobra.Command{
		Use:   "stage [name]",
		Short: "switch the pet's stage; without a name cycle to the next one",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			stage := ""
			if len(args) == 1 {
				stage = args[0]
			}
			return ipc.NewClient(petOrdinal).ChangeStage(stage)
		},
	}

	reloadCmd := &cobra.Command{
		Use:   "reload",
		Short: "make a pet re-read its configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ipc.NewClient(petOrdinal).Reload()
		},
	}

	quitCmd := &cobra.Command{
		Use:   "quit",
		Short: "close a pet",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ipc.NewClient(petOrdinal).Quit()
		},
	}

	cmds := []*cobra.Command{statusCmd, keepCmd, transparentCmd, stageCmd, reloadCmd, quitCmd}
	for _, c := range cmds {
		addPetFlag(c)
	}
	return cmds
}

func newPeersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "peers",
		Short: "list the pets running in this session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			registry, err := peers.OpenRegistry()
			if err != nil {
				return err
			}
			entries, err := registry.List()
			if err != nil {
				return err
			}
			if len(entries) == 0 {
				fmt.Println("no pets running")
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ORDINAL\tPID\tWINDOW\tJOINED\tANIMATION")
			for _, e := range entries {
				animation := "-"
				if st, err := ipc.NewClient(e.Ordinal).Status(); err == nil {
					animation = st.Animation
				}
				fmt.Fprintf(w, "%d\t%s\t0x%x\t%s\t%s\n",
					e.Ordinal, strconv.Itoa(e.PID), uint32(e.WindowID),
					e.JoinedAt.Local().Format(time.DateTime), animation)
			}
			return w.Flush()
		},
	}
}
