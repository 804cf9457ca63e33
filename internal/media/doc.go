// Package media classifies files into the Pictures, Videos, and Audio
// categories by extension.
//
// Classification is pure: it looks only at the filename suffix, compared
// case-insensitively against three disjoint extension sets. Anything else is
// Unclassified and must be left where it is.
package media
