// Package mailscan scans the email open in a webmail tab for spam and
// phishing. It extracts the visible message body from the page, submits it
// to a classification service and renders the verdict, confidence and
// supporting evidence.
//
// This package contains domain types and interfaces following Ben Johnson's
// Standard Package Layout. Implementations live in subdirectories named
// after their primary dependency (e.g., goquery/, rod/, gemini/).
package mailscan
