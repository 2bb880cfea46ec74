// Package module contains the correction modules shipped with gecco.
//
// Each module implements types.Module and can run either in-process or on
// remote module servers, switched purely by configuration. The lexicon
// module is the reference implementation; project-specific modules follow
// its shape.
package module
