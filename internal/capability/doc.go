// Package capability defines the scanning capability the scan workflow
// depends on and ships the implementations used by codescan.
//
// A capability answers four questions: is scanning supported here, what is
// the camera permission state, can that permission be requested, and what
// does a scan decode. Decoding always happens inside the capability; this
// module never parses symbols itself.
//
// Implementations:
//   - Zbar: delegates to the zbarimg / zbarcam tools (image files or a V4L2
//     camera device)
//   - Fixture: scripted answers loaded from YAML, for demos and tests
//
// Raw permission values from a platform are turned into model.PermissionState
// by AdaptPermission at this boundary, so callers only ever see the closed
// enumeration.
package capability
