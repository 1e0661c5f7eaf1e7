// Package extensibility holds pluggable pieces that sit around a History:
// snapshot validators, originator decorators and a periodic checkpointer.
package extensibility
