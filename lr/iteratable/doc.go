/*
Package iteratable implements an iteratable container data structure.

Set is a special purpose set type, suitable mainly for implementing algorithms
around grammars, scanners, parsers, etc. These kinds of algorithms are often
more straightforward to describe as set constructions and operations. Elements
are held in insertion order, and membership is decided by value equality, not
by reference identity. This matters because set elements frequently are
compound values themselves — item sets, symbol sequences — which would defeat
identity-based containers.

Unusually, most set operations are destructive!

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2022 Norbert Pillmayer <norbert@pillmayer.com>

*/
package iteratable
