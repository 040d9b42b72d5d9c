package parser

// ── 各版式的样例文本 ──

const tabularSample = `Subject Code
Description
Lec Units
Lab Units
Credited Units
Room #
Schedule
CS101
Intro to CS
3
0
3
NGE101
Tue, Sat: 08:00AM - 10:00AM`

const blockSample = `IT332
G1
C0
Web Dev
3
TH 08:00 AM - 10:00 AM,
NGE207,
Online`

const blockMultiSample = `IT332
G1
C0
Web Dev
3
TTH 08:00 AM - 10:00 AM,
M 01:00 PM - 02:00 PM,
NGE207,
NGE208
Online
IT101
G2
Intro to Computing
3
Online
CSIT210
CCS-SAT-AM1
Data Structures
2
1
W 09:00 AM - 12:00 PM
RTL301
IT102
D3
Discrete Math
3`

const portalSample = `CCS
BACHELOR OF SCIENCE IN INFORMATION TECHNOLOGY
IT332
Web Development
G1
TTH
8:00 AM - 10:00 AM
NGE207
3
Online
CCS
BACHELOR OF SCIENCE IN INFORMATION TECHNOLOGY
IT101
Intro to Computing
G2
3
N`

const simpleSample = `Course Code Course Title Schedule
CS101 Intro to Computing M W F 8:00 AM 9:00 AM NGE101
IT332 Web Dev Thursday 1:00 PM 3:00 PM Online`
