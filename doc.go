/*
Package yalr is an LR parser generator and driver.

yalr constructs deterministic bottom-up parsing tables from context-free
grammars with semantic actions and optional operator precedence, and executes
them against token streams to produce values. Package structure is as follows:

■ lr: Package lr implements grammars, grammar analysis (NULLABLE, FIRST,
FOLLOW and derived relations) and the construction of SLR(1), canonical LR(1)
and LALR(1) parser tables, including conflict resolution and a conflict log.

■ lr/parser: Package parser implements the shift/reduce driver, a stack
machine interleaving parser actions with user semantic actions.

■ lr/cache: Package cache persists constructed tables in a versioned binary
format and re-loads them, guarding against stale files.

■ lr/scanner: Package scanner implements the lexer boundary: a regex-rule
tokenizer producing the token streams the driver consumes.

■ lr/rulelang: Package rulelang parses textual grammar-rule notation into the
grammar form — itself a client of the core packages.

The base package contains data types which are used throughout all the other
packages.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2022 Norbert Pillmayer <norbert@pillmayer.com>

*/
package yalr
