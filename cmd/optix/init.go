// Copyright (C) 2023 Tickmarket Labs Limited
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as
// published by the Free Software Foundation, either version 3 of the
// License, or (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <http://www.gnu.org/licenses/>.

package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"code.tickmarket.io/optix/config"
)

func defaultHome() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".optix"
	}
	return filepath.Join(home, ".optix")
}

func init() {
	var home string
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a default configuration file into the node home",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.NewDefaultConfig()
			if err := config.Write(home, &cfg); err != nil {
				return err
			}
			fmt.Printf("configuration written to %s\n", filepath.Join(home, config.DefaultFileName))
			return nil
		},
	}
	cmd.Flags().StringVar(&home, "home", defaultHome(), "node home directory")
	rootCmd.AddCommand(cmd)
}
