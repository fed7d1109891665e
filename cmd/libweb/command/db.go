// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package command

import "github.com/spf13/cobra"

var dbCmd = &cobra.Command{
	Use:   "db",
	Short: "Database management actions",
	Long: `Database management actions can be chosen by sub-commands.
For fresh installation in a development or production environment,
the init-dev or init-prod may be used.`,
}

// credsRenewalMessage describes how init-dev and init-prod manage the
// PostgreSQL roles.
const credsRenewalMessage = `
With a PostgreSQL database, the admin role credentials are read from
the .pgpass file in the configured pass-dir, the normal role is created
if missing, and a fresh random password is set for it. The new password
is written to .pgpass.new and moved over .pgpass after commitment.
A SQLite database has no roles, so these steps are skipped.`

func init() {
	rootCmd.AddCommand(dbCmd)
}
