// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package transferlog

// transfer table, amounts kept as 8-byte big-endian blobs
const transferTableSchema = `
create table if not exists transfer (
	seq integer primary key autoincrement,
	time integer,
	op text,
	caller blob(20),
	kind text,
	fromAddress blob(20),
	toAddress blob(20),
	authority blob(20),
	amount blob(8)
);

CREATE INDEX if not exists fromIndex on transfer(fromAddress);
CREATE INDEX if not exists toIndex on transfer(toAddress);
`
