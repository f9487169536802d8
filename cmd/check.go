package cmd

import (
	"errors"
	"fmt"

	"github.com/ichaly/entschema/metadata"
	"github.com/spf13/cobra"
)

var checkCmd = &cobra.Command{
	Use:   "check [paths...]",
	Short: "校验实体文件并列出全部问题",
	RunE: func(cmd *cobra.Command, args []string) error {
		paths, err := schemaPaths(cmd, args)
		if err != nil {
			return err
		}
		raws, err := metadata.Load(paths...)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		list, err := metadata.NormalizeAll(raws)
		if err != nil {
			var ce *metadata.ConfigurationError
			if !errors.As(err, &ce) {
				return err
			}
			for _, i := range ce.Issues {
				_, _ = fmt.Fprintf(out, "%s [%s]\n", i.Error(), i.Code)
			}
			return fmt.Errorf("校验失败，共 %d 个问题", len(ce.Issues))
		}
		_, _ = fmt.Fprintf(out, "校验通过，共 %d 个实体\n", len(list))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(checkCmd)
}
