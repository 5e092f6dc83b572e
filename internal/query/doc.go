// Package query answers free-text electrical code questions against the
// embedded NEC index. A fixed regexp fast path handles the most common
// question shapes; everything else goes through keyword retrieval and a
// deterministic response composer. Identical input always produces
// byte-identical output.
package query
