/*
Package testsupport is an internal package breaking the import cycle between
reexec and reexec/testing: it passes coverage profile data file names and
locations back and forth between the two packages while an application using
reexec is under test, and it lets reexec/testing trigger reexec's RunAction
without importing it.
*/
package testsupport
