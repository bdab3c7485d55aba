package rod

// Scriptable exposes scriptable to tests.
var Scriptable = scriptable
