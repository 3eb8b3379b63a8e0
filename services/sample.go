package services

// SampleLog is a survey scan export used by "calc -sample" and in tests.
const SampleLog = "" +
	"Clear Griemeer\t116.085\t92.868 m3\t19 km\n" +
	"Clear Griemeer\t122.270\t97.816 m3\t78 km\n" +
	"Clear Griemeer\t125.198\t100.158 m3\t81 km\n" +
	"Clear Griemeer\t143.493\t114.794 m3\t36 km\n" +
	"Clear Griemeer\t153.104\t122.483 m3\t24 km\n" +
	"Fiery Kernite\t70.000\t84.000 m3\t17 km\n" +
	"Griemeer\t78.204\t62.563 m3\t68 km\n" +
	"Griemeer\t89.722\t71.777 m3\t66 km\n" +
	"Griemeer\t97.035\t77.628 m3\t3.528 m\n" +
	"Griemeer\t97.839\t78.271 m3\t50 km\n" +
	"Griemeer\t118.601\t94.880 m3\t40 km\n" +
	"Griemeer\t122.579\t98.063 m3\t31 km\n" +
	"Griemeer\t139.418\t111.534 m3\t31 km\n" +
	"Griemeer\t150.732\t120.585 m3\t54 km\n" +
	"Griemeer\t296.826\t237.460 m3\t34 km\n" +
	"Inky Griemeer\t61.147\t48.917 m3\t62 km\n" +
	"Inky Griemeer\t125.905\t100.724 m3\t7.714 m\n" +
	"Inky Griemeer\t135.446\t108.356 m3\t86 km\n" +
	"Kernite\t66.667\t80.000 m3\t17 km\n" +
	"Kernite\t68.889\t82.666 m3\t21 km\n" +
	"Kernite\t71.111\t85.333 m3\t56 km\n" +
	"Kernite\t73.333\t87.999 m3\t70 km\n" +
	"Luminous Kernite\t44.800\t53.760 m3\t64 km\n" +
	"Luminous Kernite\t46.200\t55.440 m3\t28 km\n" +
	"Luminous Kernite\t49.000\t58.800 m3\t17 km\n" +
	"Opaque Griemeer\t49.702\t39.761 m3\t25 km\n" +
	"Opaque Griemeer\t69.300\t55.440 m3\t58 km\n" +
	"Prismatic Gneiss\t1.515\t7.575 m3\t16 km\n" +
	"Resplendant Kernite\t24.162\t28.994 m3\t45 km\n" +
	"Resplendant Kernite\t34.300\t41.160 m3\t13 km"
