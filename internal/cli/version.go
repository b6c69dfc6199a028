// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
)

func versionLine(info BuildInfo) string {
	return fmt.Sprintf("aria %s (commit %s, built %s, %s/%s)",
		info.Version, info.GitCommit, info.BuildDate, runtime.GOOS, runtime.GOARCH)
}

func (a *app) newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:         "version",
		Short:       "Print version information",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{annotationSkipConfig: "true"},
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), versionLine(a.info))
		},
	}
}
