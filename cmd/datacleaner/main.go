package main

import (
	"github.com/spf13/cobra"
)

func addCommands(root *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the dataset cleaning HTTP server",
		Args:  cobra.NoArgs,
		Run:   serve}
	cmd.Flags().String("listen", "", "listen address (default: config listen)")
	root.AddCommand(cmd)

	cmd = &cobra.Command{
		Use:   "clean file",
		Short: "Clean a CSV file and write the result",
		Args:  cobra.ExactArgs(1),
		Run:   clean}
	cmd.Flags().StringP("output", "o", "", "output file (default: cleaned_<file>)")
	cmd.Flags().Bool("remove-duplicates", false, "drop exact duplicate rows")
	cmd.Flags().Bool("fill-missing", false, "fill missing cells")
	cmd.Flags().String("method", "mean", "numeric fill method: mean, median, mode or zero")
	cmd.Flags().Bool("drop-high-missing", false, "drop columns with too many missing cells")
	cmd.Flags().Float64("threshold", -1, "missing fraction above which a column is dropped (default: config)")
	cmd.Flags().Bool("remove-special-chars", false, "strip special characters from text columns")
	cmd.Flags().Bool("convert-types", false, "coerce numeric-looking text columns")
	cmd.Flags().Bool("clip-outliers", false, "clip numeric values to the IQR fence")
	cmd.Flags().Float64("iqr-factor", -1, "IQR fence multiplier (default: config)")
	cmd.Flags().Bool("all", false, "apply every operation")
	root.AddCommand(cmd)

	cmd = &cobra.Command{
		Use:   "profile file",
		Short: "Print the summary of a CSV file",
		Args:  cobra.ExactArgs(1),
		Run:   profile}
	cmd.Flags().String("chart", "", "write a missing-values bar chart (.png, .svg or .pdf)")
	root.AddCommand(cmd)
}

func main() {
	var root = &cobra.Command{Use: "datacleaner"}
	root.PersistentFlags().String("config", "", "YAML config file")
	root.PersistentFlags().String("log-level", "", "log level (default: config log_level)")
	root.PersistentFlags().String("log-format", "", "log format, 'text' or 'json' (default: config log_format)")
	root.PersistentFlags().BoolP("quiet", "q", false, "silence status output")
	addCommands(root)
	root.Execute()
}
