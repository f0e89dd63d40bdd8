// Package wheel reads dependency metadata from Python wheel archives.
//
// # Overview
//
// A wheel is a zip archive named after the PEP 427 convention
// (name-version[-build]-python-abi-platform.whl). Its metadata lives in a
// <name>-<version>.dist-info directory, either as a structured metadata.json
// file or as the RFC 822 style METADATA file.
//
//	w, err := wheel.Open("attrs-18.1.0-py2.py3-none-any.whl")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	meta, err := w.Metadata(wheel.ParseOptions{})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	view, err := wheel.NewView(meta, marker.DefaultEnvironment())
//	for name := range view.Dependencies("tests") {
//	    fmt.Println(name)
//	}
//
// # Extras
//
// Requires-Dist lines in METADATA attach optional dependencies to an extra
// with a marker clause such as extra == "tests". The parser removes that
// clause (see [marker.SplitExtra]), records the extra on the [Requirement]
// and keeps whatever condition remains as the requirement's environment.
//
// # Legacy Policy
//
// Older tooling ignored every Requires-Dist marker except the extra clause.
// [LegacyCompat] reproduces that: residual conditions are discarded and
// requirements guarded only by other conditions are skipped. The default,
// [LegacyEvaluate], keeps residual conditions and evaluates them like the
// environments of metadata.json.
package wheel
