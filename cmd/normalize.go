package cmd

import (
	"fmt"
	"os"

	"github.com/ichaly/entschema/metadata"
	"github.com/ichaly/entschema/utl"
	"github.com/spf13/cobra"
)

const outputFlag = "output"

var normalizeCmd = &cobra.Command{
	Use:     "normalize [paths...]",
	Aliases: []string{"n"},
	Short:   "输出规范化后的实体集合",
	RunE: func(cmd *cobra.Command, args []string) error {
		paths, err := schemaPaths(cmd, args)
		if err != nil {
			return err
		}
		raws, err := metadata.Load(paths...)
		if err != nil {
			return err
		}
		list, err := metadata.NormalizeAll(raws)
		if err != nil {
			return err
		}
		data, err := utl.MarshalIndentJSON(list)
		if err != nil {
			return err
		}
		data = append(data, '\n')

		output, _ := cmd.Flags().GetString(outputFlag)
		if output == "" {
			_, err = cmd.OutOrStdout().Write(data)
			return err
		}
		if err := os.WriteFile(output, data, 0o644); err != nil {
			return fmt.Errorf("写入输出文件失败: %w", err)
		}
		return nil
	},
}

func init() {
	normalizeCmd.Flags().StringP(outputFlag, "o", "", "输出文件，默认为标准输出")
	rootCmd.AddCommand(normalizeCmd)
}
