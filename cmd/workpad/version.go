/*
 * Copyright 2026 The Workpad Authors. All rights reserved.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/workpad-team/workpad/internal/version"
)

var (
	output string
)

type versionDetail struct {
	WorkpadVersion string `json:"workpadVersion" yaml:"workpadVersion"`
	GoVersion      string `json:"goVersion" yaml:"goVersion"`
	BuildDate      string `json:"buildDate,omitempty" yaml:"buildDate,omitempty"`
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number of Workpad",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateVersionOptions(); err != nil {
				return err
			}

			detail := versionDetail{
				WorkpadVersion: version.Version,
				GoVersion:      runtime.Version(),
				BuildDate:      version.BuildDate,
			}

			switch output {
			case "":
				cmd.Printf("Workpad: %s\n", detail.WorkpadVersion)
				cmd.Printf("Go: %s\n", detail.GoVersion)
				if detail.BuildDate != "" {
					cmd.Printf("Build Date: %s\n", detail.BuildDate)
				}
			case "yaml":
				marshalled, err := yaml.Marshal(&detail)
				if err != nil {
					return errors.New("failed to marshal YAML")
				}
				fmt.Println(string(marshalled))
			case "json":
				marshalled, err := json.MarshalIndent(&detail, "", "  ")
				if err != nil {
					return errors.New("failed to marshal JSON")
				}
				fmt.Println(string(marshalled))
			}

			return nil
		},
	}
}

func validateVersionOptions() error {
	if output != "" && output != "yaml" && output != "json" {
		return errors.New(`--output must be 'yaml' or 'json'`)
	}

	return nil
}

func init() {
	cmd := newVersionCmd()
	cmd.Flags().StringVarP(
		&output,
		"output",
		"o",
		output,
		"One of 'yaml' or 'json'.",
	)

	rootCmd.AddCommand(cmd)
}
