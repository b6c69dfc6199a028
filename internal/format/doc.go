// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package format splits a bot reply into renderable segments.
//
// The formatter understands exactly three constructs:
//
//   - Fenced code blocks delimited by triple backticks, with an optional
//     language tag on the opening fence.
//   - Inline code wrapped in single backticks.
//   - Bold text wrapped in double asterisks.
//
// Everything else is plain text. There is no nesting and no error recovery:
// an unterminated fence is simply left in the text.
//
// # Usage
//
//	for _, seg := range format.Format(reply) {
//	    switch seg.Kind {
//	    case format.SegmentCode:
//	        fmt.Println(seg.Language, seg.Code)
//	    case format.SegmentText:
//	        for _, line := range seg.Lines {
//	            for _, span := range line {
//	                fmt.Print(span.Text)
//	            }
//	        }
//	    }
//	}
//
// Format is a pure function; rendering and the clipboard action bound to a
// code block live in the ui packages.
package format
