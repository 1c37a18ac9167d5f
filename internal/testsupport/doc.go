// Package testsupport builds throwaway configurations and stores for tests.
package testsupport
