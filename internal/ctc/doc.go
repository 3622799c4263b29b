// Package ctc decodes the per-timestep class scores of a sequence
// recognition model into text using greedy CTC (connectionist temporal
// classification) decoding.
//
// # Alphabet Convention
//
// Class index 0 is the CTC blank. The caller's alphabet is wrapped before
// decoding: a blank placeholder is prepended and a literal space appended, so
// for an alphabet ["A", "B"] the classes are:
//
//	0 = blank, 1 = "A", 2 = "B", 3 = " "
//
// # Decoding Rules
//
// One left-to-right pass over the timesteps:
//   - The class with the highest score wins the timestep (ties go to the
//     lowest index)
//   - Blank timesteps and repeats of the previous timestep's class extend a
//     run counter
//   - A non-blank class that differs from the previous timestep is emitted
//     as a character, with its score as confidence
//
// # Column Accounting
//
// Every emitted character records a column index (the 1-based timestep it
// was emitted at) and a column width. The run of blank/repeat timesteps
// between two characters is split: half is added to the previous character's
// width and the rest, plus the emitting timestep, becomes the new
// character's width. Leading blanks belong to the first character and
// trailing blanks to the last, so the widths of a line with at least one
// character always sum to the number of timesteps.
//
// Decoding is deterministic and keeps no state between calls.
package ctc
