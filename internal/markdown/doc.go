// Package markdown renders Markdown documents to HTML with goldmark and runs
// the math filter over the result. Front matter can switch filtering off for
// a document (math: false) or disable individual families (math_disabled).
package markdown
