// Package io provides JSON import and export for simulated populations.
//
// # Overview
//
// A population is written as a flat list of individuals plus a summary of
// its pedigrees. The format is meant for:
//
//   - Re-running queries (distance, path, histogram) against a saved run
//   - Feeding the query server a fixed population
//   - Integration with external analysis tools
//
// # JSON Format
//
//	{
//	  "run_id": "5d0c6f0e-...",
//	  "individuals": [
//	    {"pid": 1, "generation": 2, "female": true, "pedigree": 1,
//	     "haplotype": [false, true], "variants": 1},
//	    {"pid": 2, "generation": 1, "female": false, "mother": 1, "pedigree": 1}
//	  ],
//	  "pedigrees": [
//	    {"id": 1, "root": 1, "size": 2}
//	  ]
//	}
//
// # Individual Fields
//
// Required:
//   - pid: Unique integer identifier
//   - generation: Generation index, 0 being the youngest
//
// Optional:
//   - female: Sex flag (defaults to false)
//   - mother: Pid of the mother; omitted for founders
//   - pedigree: Pedigree id; any non-zero value makes [ReadJSON] re-run
//     pedigree assignment after import
//   - haplotype, variants: Seeded haplotype and its variant count
//
// The pedigrees array is informational. [ReadJSON] recomputes pedigrees from
// the mother links, so ids match the exported ones when the exporter also
// assigned them in pid order.
//
// # Import
//
// Use [ReadJSON] to read from any io.Reader or [ImportJSON] for a file path.
// Both reject duplicate pids, unknown mothers, second mothers and cycles.
//
// # Export
//
// Use [WriteJSON] or [ExportJSON]. Individuals are written in creation order.
package io
