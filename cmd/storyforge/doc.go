// Command storyforge is the operator CLI for the content lifecycle tracker.
// It ingests items, executes validated stage transitions, and renders history,
// distribution, and stuck-item reports.
package main
