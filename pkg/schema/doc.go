// Package schema declares the types of layer parameters.
//
// A problem may attach a schema to a layer:
//
//	layers:
//	  - name: functional
//	    params:
//	      platform: arm|x86
//	      watts: int
//	      tags: "[string]"
//
// Initial object parameters are then checked against it, and steps may
// only write declared parameters.
package schema
