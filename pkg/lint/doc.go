// Package lint validates XML views against the framework model.
//
// Validators are listed in a static, ordered table (see Rules). Each one is a
// pure function over a Context and returns diagnostics; validators never see
// or suppress each other's findings. An Analyzer runs the table, skipping
// disabled rules and applying severity overrides from Config:
//
//	cfg := lint.NewConfig()
//	cfg.Disable("UI5002")
//	cfg.SetSeverity("UI5001", core.SeverityWarning)
//
//	diags := lint.NewAnalyzer(cfg).Analyze(lint.Context{
//		Doc:   xmlast.Parse(text),
//		Model: m,
//		Flags: lint.Flags{FlexEnabled: true},
//	})
//
// Diagnostics carry typed fix data (StableIDFix, HardcodedTextFix) consumed by
// the quickfix package.
package lint
