/*
Package cli provides helpers shared by the underwriter command.

Output Formatting:

Results render as text, JSON or CSV. Types that implement Table render as
aligned columns in text mode and as rows in CSV mode:

	format, err := cli.ParseFormat(flagValue)
	if err != nil {
		return err
	}
	return cli.NewFormatter(format).FormatTo(os.Stdout, results)

Exit Codes:

ExitCode maps command errors to process exit codes. A FindingsError, for
example from evaluate --fail-on alert, exits with ExitFindings so CI
pipelines can tell rule outcomes apart from operational failures.

Signal Handling:

	ctx, stop := cli.SetupSignalHandler(context.Background())
	defer stop()
	cli.OnReload(ctx, func() { _ = manager.Reload() })
*/
package cli
