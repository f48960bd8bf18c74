/*
Package mock contains mock implementations of interfaces, intended for use in
unit-tests.

Mocks of interfaces defined in this module live in a directory named after the
package that defines them, e.g. mocks for the root package are in `./iobl`.
The package name of all mock implementations follows the `mock_*` pattern,
where `*` is the original package name.
*/
package mock
