// Package gecco is a correction-pipeline orchestrator: it applies a set of
// independent correction modules to a structured document, scheduling one
// work item per (module, matching unit) pair across a worker pool, routing
// remote modules to their least-loaded server, and serializing all document
// mutation behind a single run-scoped lock.
//
// Modules implement the types.Module interface and run either in-process or
// on remote module servers speaking the newline-delimited wire protocol
// (see the wire package); locality is pure configuration. The document is
// externally owned and consumed through the types.Document interface; the
// document package ships an in-memory reference adapter.
//
// Basic usage:
//
//	cfg := gecco.DefaultConfig()
//	corrector, err := gecco.NewCorrector(&cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := corrector.Register(myModule); err != nil {
//	    log.Fatal(err)
//	}
//
//	report, err := corrector.Run(ctx, doc)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	log.Printf("%d items, %d failed", report.Items, report.Failed)
//
// A run walks a fixed lifecycle: Idle → Initializing → Dispatching →
// Draining → Finalizing → Persisted. Per-item failures never abort a run;
// they are counted in the returned Report and the partially-corrected
// document is still finalized and saved.
package gecco
