// Package guard enforces constructor usage for value objects and commands.
package guard
