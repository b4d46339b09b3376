// Package mission parses and runs rover mission scripts.
//
// A script is a sequence of statements, one per line by convention:
//
//	# land two rovers
//	rover 1 "Curiosity"
//	rover 2 "Spirit"
//	move 1 MRM
//	move 2 ""          # empty command sequence
//	rename 2 "Opportunity"
//	show 1
//	show 2
//
// show writes "<id> <name> <x> <y> <heading>", e.g. "1 Curiosity 1 1 E".
// Run stops at the first failing statement and reports its position.
package mission
