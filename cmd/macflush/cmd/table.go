// Copyright 2026 Google LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func (a *app) tableCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "table",
		Short: "Print the address table of the switch",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			env, _, err := a.env(ctx)
			if err != nil {
				return err
			}
			defer env.Close()

			tbl, err := env.Switch.MACTable(ctx)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprint(out, tbl)
			if !a.v.GetBool("dump") {
				return nil
			}
			dump, err := env.Switch.DataplaneDump(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "\n%s", dump)
			return nil
		},
	}
	cmd.Flags().Bool("dump", false, "Also print the dataplane dump.")
	a.bind(cmd.Flags())
	return cmd
}
