package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/justyntemme/avgo/pkg/framework/binding"
	"github.com/justyntemme/avgo/pkg/framework/param"
)

func newInspectCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "inspect <name>",
		Short: "Show the ports, working sets, parameters and buses of a processor",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := lookup(args[0])
			if err != nil {
				return err
			}
			cfg, logger, err := opts.load(cmd)
			if err != nil {
				return err
			}
			h, err := e.Bind(cfg, binding.WithLogger(logger))
			if err != nil {
				return err
			}
			printHost(cmd.OutOrStdout(), h)
			return nil
		},
	}
}

func printHost(w io.Writer, h binding.Host) {
	info := h.Info()
	fmt.Fprintf(w, "%s (%s)\n", info, info.ID)
	fmt.Fprintf(w, "  uid:      %s\n", info.UID())
	fmt.Fprintf(w, "  vendor:   %s\n", info.Vendor)
	fmt.Fprintf(w, "  category: %s\n", info.Category)

	fmt.Fprintln(w, "\nworking sets:")
	for _, ws := range h.WorkingSets() {
		if len(ws.Tokens) == 0 {
			continue
		}
		fmt.Fprintf(w, "  %-3s %s [%s]\n", ws.Direction, ws.Name, ws.Predicate)
		for i, tok := range ws.Tokens {
			fmt.Fprintf(w, "    %d  field %-2d %-10s %-16q %s\n", i, tok.Index, tok.Name, tok.Label(), tok.Capability)
		}
	}

	fmt.Fprintln(w, "\nparameters:")
	for _, p := range h.Parameters().All() {
		fmt.Fprintf(w, "  %3d  %-18s %s\n", p.ID, p.Name, describe(p))
	}

	fmt.Fprintln(w, "\nbuses:")
	for _, b := range h.Buses().Buses() {
		state := "active"
		if !b.IsActive {
			state = "inactive"
		}
		fmt.Fprintf(w, "  %-6s %-4s %-12q %d ch  port %d  %s\n", b.Direction, b.BusType, b.Name, b.ChannelCount, b.Port, state)
	}
}

func describe(p *param.Parameter) string {
	var sb strings.Builder
	if len(p.Choices) > 0 {
		fmt.Fprintf(&sb, "{%s}", strings.Join(p.Choices, ", "))
	} else {
		fmt.Fprintf(&sb, "[%g, %g]", p.Min, p.Max)
	}
	if p.Unit != "" {
		fmt.Fprintf(&sb, " %s", p.Unit)
	}
	fmt.Fprintf(&sb, " = %s", p.FormatValue(p.GetValue()))

	var flags []string
	if p.ReadOnly() {
		flags = append(flags, "read-only")
	}
	if p.Flags&param.IsHidden != 0 {
		flags = append(flags, "hidden")
	}
	if p.StepCount > 0 && len(p.Choices) == 0 {
		flags = append(flags, fmt.Sprintf("%d steps", p.StepCount))
	}
	if len(flags) > 0 {
		fmt.Fprintf(&sb, " (%s)", strings.Join(flags, ", "))
	}
	return sb.String()
}
